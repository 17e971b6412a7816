/**
 * @description
 * Display-currency catalog for user accounts. Codes are validated against
 * ISO 4217 via golang.org/x/text/currency; the curated list below is what
 * the frontend offers in its picker.
 */
package domain

import "golang.org/x/text/currency"

// CurrencyOption is one entry of the display-currency catalog.
type CurrencyOption struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// DefaultCurrency is assigned to new accounts.
const DefaultCurrency = "USD"

// Currencies is the catalog served to clients.
var Currencies = []CurrencyOption{
	{Code: "USD", Name: "US Dollar", Symbol: "$"},
	{Code: "EUR", Name: "Euro", Symbol: "€"},
	{Code: "GBP", Name: "Pound Sterling", Symbol: "£"},
	{Code: "JPY", Name: "Japanese Yen", Symbol: "¥"},
	{Code: "CHF", Name: "Swiss Franc", Symbol: "CHF"},
	{Code: "CAD", Name: "Canadian Dollar", Symbol: "CA$"},
	{Code: "AUD", Name: "Australian Dollar", Symbol: "A$"},
	{Code: "INR", Name: "Indian Rupee", Symbol: "₹"},
	{Code: "BRL", Name: "Brazilian Real", Symbol: "R$"},
	{Code: "MXN", Name: "Mexican Peso", Symbol: "MX$"},
}

// ValidCurrency reports whether code is a well-formed ISO 4217 currency code.
func ValidCurrency(code string) bool {
	_, err := currency.ParseISO(code)
	return err == nil
}
