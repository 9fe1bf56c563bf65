package quickbooks

import "strings"

// CompanyInfo is the subset of the CompanyInfo entity used to identify a company.
type CompanyInfo struct {
	ID          string  `json:"Id"`
	CompanyName string  `json:"CompanyName"`
	LegalName   string  `json:"LegalName"`
	CompanyAddr Address `json:"CompanyAddr"`
	LegalAddr   Address `json:"LegalAddr"`
	Country     string  `json:"Country"`
}

// Address is a QuickBooks PhysicalAddress.
type Address struct {
	Line1                  string `json:"Line1"`
	Line2                  string `json:"Line2"`
	City                   string `json:"City"`
	CountrySubDivisionCode string `json:"CountrySubDivisionCode"`
	PostalCode             string `json:"PostalCode"`
	Country                string `json:"Country"`
}

// String joins the non-empty address parts with ", ".
func (a Address) String() string {
	parts := make([]string, 0, 6)
	for _, p := range []string{a.Line1, a.Line2, a.City, a.CountrySubDivisionCode, a.PostalCode, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
