package contract

import "errors"

// ErrDataSourceUnavailable is returned when sales or inventory cannot be read.
// A run never produces a partial report after this error.
var ErrDataSourceUnavailable = errors.New("data source unavailable")

// ErrProductNotFound is returned when a single-product lookup misses the inventory.
var ErrProductNotFound = errors.New("product not found")
