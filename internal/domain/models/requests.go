package models

// Requests for dashboard HTTP endpoints. Defined in domain for consistency and reuse.

type ChartPNGRequest struct {
	ID     string `param:"id" validate:"required"`
	Width  int    `query:"width" default:"1024" validate:"gte=200,lte=4096"`
	Height int    `query:"height" default:"400" validate:"gte=150,lte=2160"`
}
