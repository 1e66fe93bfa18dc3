package report

import (
	"fmt"
	"strings"

	"github.com/medemi-triage-server/internal/domain"
)

const rule = "================================================================================"

// FormatAssessment renders the assessment as plain text for terminals and
// tool replies.
func FormatAssessment(record *domain.PatientRecord, a *domain.Assessment) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\nASSESSMENT SUMMARY\n%s\n", rule, rule)

	if record != nil {
		b.WriteString("\nExtracted Information:\n")
		fmt.Fprintf(&b, "   Symptoms: %s\n", joinOr(record.Symptoms, "None reported"))
		fmt.Fprintf(&b, "   Severity: %s\n", joinOr(record.Modifiers, "Not specified"))
		fmt.Fprintf(&b, "   Duration: %s\n", orText(record.Duration, "Not specified"))
		fmt.Fprintf(&b, "   Age: %s\n", orText(record.Age, "Not specified"))
		fmt.Fprintf(&b, "   Gender: %s\n", orText(record.Gender, "Not specified"))
		fmt.Fprintf(&b, "   Medical History: %s\n", joinOr(record.PastMedicalHistory, "None reported"))
		if record.PainScore != nil {
			fmt.Fprintf(&b, "   Pain: %d/10\n", *record.PainScore)
		}
	}
	if len(a.RiskFactors) > 0 {
		fmt.Fprintf(&b, "   Risk Factors: %s\n", strings.Join(a.RiskFactors, ", "))
	}

	fmt.Fprintf(&b, "\nTriage Score: %.1f\n%s\n", a.Score, a.TierAdvice)
	if a.TierGuidance != "" {
		b.WriteString(a.TierGuidance + "\n")
	}

	if len(a.Diagnoses) > 0 {
		b.WriteString("\nPOSSIBLE CONDITIONS:\n")
		for i, d := range a.Diagnoses {
			fmt.Fprintf(&b, "   %d. %s %s\n      %s\n", i+1, d.Condition, d.Urgency.Label(), d.Reasoning)
		}
	}

	b.WriteString("\nRECOMMENDED SPECIALTIES:\n")
	for i, s := range a.Specialties {
		fmt.Fprintf(&b, "   %d. %s - %s\n", i+1, s.Name, s.Reason)
	}

	b.WriteString("\nAVAILABLE DOCTORS:\n")
	if a.DirectoryMessage != "" {
		fmt.Fprintf(&b, "   %s\n", a.DirectoryMessage)
	}
	for _, group := range a.DoctorGroups {
		fmt.Fprintf(&b, "\n   %s:\n", group.Specialty)
		if len(group.Doctors) == 0 {
			b.WriteString("      No doctors listed\n")
		}
		for _, d := range group.Doctors {
			fmt.Fprintf(&b, "      - %s (%s)\n        Available: %s\n", d.Name, d.Qualification, strings.Join(d.TimeSlots, ", "))
		}
	}

	fmt.Fprintf(&b, "\n%s\n%s\n", a.Disclaimer, rule)
	return b.String()
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}

func orText(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
