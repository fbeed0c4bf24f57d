package domain

import "strings"

// CertificationStatus is the state of a partner client certification.
type CertificationStatus string

const (
	CertificationPending  CertificationStatus = "PENDING"
	CertificationApproved CertificationStatus = "APPROVED"
	CertificationFailed   CertificationStatus = "FAILED"
	CertificationRevoked  CertificationStatus = "REVOKED"
	CertificationUnknown  CertificationStatus = "UNKNOWN"
)

// ParseCertificationStatus maps a wire value to a known status.
// Values the platform adds later resolve to CertificationUnknown.
func ParseCertificationStatus(s string) CertificationStatus {
	switch st := CertificationStatus(s); st {
	case CertificationPending, CertificationApproved, CertificationFailed, CertificationRevoked, CertificationUnknown:
		return st
	}
	return CertificationUnknown
}

// RejectionReason explains why a partner client certification was rejected.
// The platform sends these space separated ("LEGAL NAME NOT MATCHING").
type RejectionReason string

const (
	RejectionLegalNameNotMatching         RejectionReason = "LEGAL NAME NOT MATCHING"
	RejectionWebsiteNotMatching           RejectionReason = "WEBSITE NOT MATCHING"
	RejectionNone                         RejectionReason = "NONE"
	RejectionBusinessNotEligible          RejectionReason = "BUSINESS NOT ELIGIBLE"
	RejectionLegalNameNotFoundInDocuments RejectionReason = "LEGAL NAME NOT FOUND IN DOCUMENTS"
	RejectionAddressNotMatching           RejectionReason = "ADDRESS NOT MATCHING"
	RejectionUnknown                      RejectionReason = "UNKNOWN"
)

// ParseRejectionReason maps a wire value to a known reason. Both the spaced
// wire form and the underscore form are accepted; anything else resolves to
// RejectionUnknown.
func ParseRejectionReason(s string) RejectionReason {
	switch r := RejectionReason(strings.ReplaceAll(s, "_", " ")); r {
	case RejectionLegalNameNotMatching,
		RejectionWebsiteNotMatching,
		RejectionNone,
		RejectionBusinessNotEligible,
		RejectionLegalNameNotFoundInDocuments,
		RejectionAddressNotMatching,
		RejectionUnknown:
		return r
	}
	return RejectionUnknown
}
