package assistant

import (
	"fmt"
	"strings"
)

// Administrative email types the generator knows how to write. The
// canonical names double as retrieval queries against the corpus, so
// "Internship request" pulls the internship section into the prompt.
const (
	EmailEnrollmentCertificate = "Enrollment certificate"
	EmailInternshipRequest     = "Internship request"
	EmailAbsenceJustification  = "Absence justification"
	EmailComplaint             = "Complaint"
)

// EmailTypes lists the supported email types in display order.
func EmailTypes() []string {
	return []string{
		EmailEnrollmentCertificate,
		EmailInternshipRequest,
		EmailAbsenceJustification,
		EmailComplaint,
	}
}

// normalizeEmailType resolves a client-supplied type to its canonical
// name, ignoring case and extra whitespace.
func normalizeEmailType(emailType string) (string, error) {
	cleaned := strings.Join(strings.Fields(emailType), " ")
	for _, known := range EmailTypes() {
		if strings.EqualFold(cleaned, known) {
			return known, nil
		}
	}
	return "", &ValidationError{
		Field:  "email_type",
		Reason: fmt.Sprintf("must be one of: %s", strings.Join(EmailTypes(), ", ")),
	}
}
