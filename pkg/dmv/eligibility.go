package dmv

import "time"

// SmogStatus reports the smog certification requirement.
type SmogStatus struct {
	Passed            bool
	CheckDate         *time.Time
	Station           string
	CertificateNumber string
}

// InsuranceStatus reports insurance verification.
type InsuranceStatus struct {
	Verified     bool
	Provider     string
	PolicyNumber string
}

// EligibilityResult is produced once per renewal attempt and not persisted.
type EligibilityResult struct {
	Eligible  bool
	Smog      SmogStatus
	Insurance InsuranceStatus
}
