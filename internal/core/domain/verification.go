package domain

// VerificationStatus is the machine-readable classification of one
// verified value. The human-readable label shown in the sheet is derived
// from it via Label.
type VerificationStatus string

// Status codes for email and phone verification results.
const (
	VerifySafe       VerificationStatus = "safe"
	VerifyRisky      VerificationStatus = "risky"
	VerifyInvalid    VerificationStatus = "invalid"
	VerifyUnknown    VerificationStatus = "unknown"
	VerifyDisposable VerificationStatus = "disposable"
	VerifyMobile     VerificationStatus = "mobile"
	VerifyLandline   VerificationStatus = "landline"
	VerifyVoip       VerificationStatus = "voip"
	VerifyError      VerificationStatus = "error"
	VerifyEmpty      VerificationStatus = "empty"
)

// statusLabels maps status codes to the cell text written into the sheet.
var statusLabels = map[VerificationStatus]string{
	VerifySafe:       "✅ Safe",
	VerifyRisky:      "⚠️ Risky",
	VerifyInvalid:    "❌ Invalid",
	VerifyUnknown:    "❓ Unknown",
	VerifyDisposable: "🗑 Disposable",
	VerifyMobile:     "📱 Mobile",
	VerifyLandline:   "☎️ Landline",
	VerifyVoip:       "🌐 VoIP",
	VerifyError:      "⚠️ Error",
	VerifyEmpty:      "",
}

// Label returns the human-readable cell text for a status code.
func (s VerificationStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// VerificationResult is the outcome of verifying one email or phone value.
// Transient: written into the sheet and emitted on the event stream, not
// persisted as its own entity.
type VerificationResult struct {
	// Value is the input email address or phone number.
	Value string

	// Status is the machine classification.
	Status VerificationStatus

	// Detail is the raw backend payload summary, for diagnostics.
	Detail string
}

// EmailCheck is the raw classification from the email verification backend.
type EmailCheck struct {
	// Reachability is the backend's overall verdict, e.g. "safe",
	// "risky", "invalid" or "unknown".
	Reachability string

	// Deliverable reports whether the mailbox accepted the probe.
	Deliverable bool

	// CatchAll reports whether the domain accepts any recipient.
	CatchAll bool

	// Disposable reports whether the domain is a throwaway provider.
	Disposable bool
}

// PhoneCheck is the raw classification from a phone verification backend.
type PhoneCheck struct {
	// Valid reports whether the number is well-formed and assigned.
	Valid bool

	// LineType is "mobile", "landline" or "voip" when known.
	LineType string

	// Carrier is the operating carrier, when known.
	Carrier string

	// Country is the ISO country code, when known.
	Country string
}
