package ingestion

// LocationEvent is the shape ingestion expects after the Telegram
// transport layer has peeled a chat-platform message/edited_message apart
// (spec §6). validator tags are enforced by go-playground/validator
// as the first step of OnLocationEvent — grounded on
// slighter12-NomNom-Radar's handler-layer DTO validation.
type LocationEvent struct {
	ChatID            int64    `validate:"required"`
	MessageID         int64    `validate:"required"`
	Latitude          float64  `validate:"gte=-90,lte=90"`
	Longitude         float64  `validate:"gte=-180,lte=180"`
	Accuracy          *float64 `validate:"omitempty,gte=0"`
	Heading           *float64 `validate:"omitempty,gte=0,lte=360"`
	Speed             *float64 `validate:"omitempty,gte=0"`
	LivePeriodSeconds *int     `validate:"omitempty,gt=0"`
	IsEdit            bool
}
