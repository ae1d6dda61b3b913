package model

import "time"

type Listing struct {
	ID                  uint64     `json:"id" bson:"_id" yaml:"id" validate:"required"`
	Host                string     `json:"host" bson:"host" yaml:"host" validate:"required,eth_addr"`
	NightlyPrice        uint64     `json:"nightly_price" bson:"nightly_price" yaml:"nightly_price"`
	NightlyPriceDisplay string     `json:"nightly_price_display,omitempty" bson:"-" yaml:"-"`
	CancelBeforeHours   uint32     `json:"cancel_before_hours" bson:"cancel_before_hours" yaml:"cancel_before_hours"`
	Active              bool       `json:"active" bson:"active" yaml:"active"`
	PayoutMode          PayoutMode `json:"payout_mode" bson:"payout_mode" yaml:"payout_mode" validate:"required,oneof=Escrow Instant"`
	UpdatedAt           time.Time  `json:"updated_at" bson:"updated_at" yaml:"-"`
}
