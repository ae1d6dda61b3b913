package contracts

import "github.com/julienschmidt/httprouter"

// Handler is a feature's HTTP surface. app.Application mounts every Handler
// on the API router behind the shared middleware chain.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
