package model

import "time"

// SecurityPrice is the latest known price observation for one security.
// Prices are supplied by an external feed; a security with no observation
// yet is simply absent from the price table and holdings fall back to
// cost-basis valuation.
type SecurityPrice struct {
	SecurityID string    `json:"securityId"`
	Price      float64   `json:"price"`
	AsOf       time.Time `json:"asOf"`
}
