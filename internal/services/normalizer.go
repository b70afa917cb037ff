package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/visitordesk/checkin-backend/internal/models"
)

// ErrMalformedSubmission is returned when a payload matches none of the
// recognized submission shapes. It is the only hard error normalization
// raises; missing individual fields never block guest creation.
var ErrMalformedSubmission = errors.New("no recognizable submission shape in payload")

// NormalizerService converts raw form-provider payloads into canonical
// guest drafts. Three payload shapes are handled:
//
//  1. an "answers" map keyed by numeric field ID, each value an answer object
//  2. a flat JSON object with q<ID>_<fieldName> keys
//  3. an already guest-shaped JSON object
//
// URL-encoded raw request bodies are parsed into shape 2 first.
type NormalizerService struct{}

// NewNormalizerService creates a new normalizer service
func NewNormalizerService() *NormalizerService {
	return &NormalizerService{}
}

// answer is one form answer with its question metadata
type answer struct {
	fieldID string
	name    string
	text    string
	value   interface{}
	pretty  string
}

// fieldMatcher binds one canonical guest field to its stable form field ID
// and the ordered label substrings tried when no stable ID matches.
// Matchers run in table order and each answer is claimed at most once, so
// more specific fields sit above the generic ones that would also match
// their labels.
type fieldMatcher struct {
	field   string
	fieldID string
	aliases []string
}

var fieldMatchers = []fieldMatcher{
	{field: "hostPhone", fieldID: "26", aliases: []string{"host_phone", "hostphone", "host phone"}},
	{field: "hostEmail", fieldID: "25", aliases: []string{"host_email", "hostemail", "host email"}},
	{field: "hostName", fieldID: "20", aliases: []string{"host_name", "hostname", "host name", "host", "visiting", "employee"}},
	{field: "firstName", aliases: []string{"first_name", "firstname", "first name"}},
	{field: "lastName", aliases: []string{"last_name", "lastname", "last name"}},
	{field: "fullName", fieldID: "16", aliases: []string{"full_name", "fullname", "full name", "your name", "name"}},
	{field: "email", fieldID: "17", aliases: []string{"email", "e-mail"}},
	{field: "phoneNumber", fieldID: "152", aliases: []string{"phone_number", "phonenumber", "phone number", "phone", "mobile", "cell"}},
	{field: "company", fieldID: "18", aliases: []string{"company", "organization", "organisation"}},
	{field: "title", fieldID: "19", aliases: []string{"job_title", "job title", "title", "position", "role"}},
	{field: "purposeOfVisit", fieldID: "21", aliases: []string{"purpose_of_visit", "purpose of visit", "purpose", "reason"}},
	{field: "visitDate", fieldID: "22", aliases: []string{"visit_date", "visit date", "date"}},
	{field: "expectedDuration", fieldID: "23", aliases: []string{"expected_duration", "expected duration", "duration"}},
	{field: "specialRequirements", fieldID: "24", aliases: []string{"special_requirements", "special requirements", "requirements", "notes"}},
	{field: "smsConsent", fieldID: "174", aliases: []string{"sms_consent", "smsconsent", "sms_notifications", "smsnotifications", "text_consent", "textconsent", "consent"}},
}

// consentKeywords collapse checkbox answers to a boolean when present
var consentKeywords = []string{"agree", "consent", "yes", "opt in", "opt-in"}

// Normalize turns one raw submission into a pending guest draft. It never
// fails on missing fields; the only error is ErrMalformedSubmission when no
// payload shape is recognized at all.
func (s *NormalizerService) Normalize(sub *models.RawSubmission) (*models.NormalizedSubmission, error) {
	answers, submissionID, ok := s.collectAnswers(sub)
	if ok {
		return s.fromAnswers(answers, submissionID), nil
	}

	if guest, fields, ok := s.fromGuestShaped(sub.Body); ok {
		submissionID = stringField(sub.Body, "submissionID", "submission_id", "id")
		if submissionID == "" {
			submissionID = sub.CorrelationID
		}
		s.finalize(guest, submissionID)
		return &models.NormalizedSubmission{
			Guest:        guest,
			Fields:       fields,
			SubmissionID: submissionID,
		}, nil
	}

	return nil, ErrMalformedSubmission
}

// collectAnswers extracts the answer list from the structured "answers"
// shape, flat q-prefixed JSON keys, or a URL-encoded raw request body.
func (s *NormalizerService) collectAnswers(sub *models.RawSubmission) ([]answer, string, bool) {
	if sub.Body != nil {
		if raw, ok := sub.Body["answers"].(map[string]interface{}); ok && len(raw) > 0 {
			return parseAnswerObjects(raw), stringField(sub.Body, "submissionID", "submission_id", "id"), true
		}

		if answers := parsePrefixedKeys(sub.Body); len(answers) > 0 {
			return answers, stringField(sub.Body, "submissionID", "submission_id"), true
		}
	}

	if sub.RawRequest != "" {
		values, err := url.ParseQuery(sub.RawRequest)
		if err == nil {
			flat := make(map[string]interface{}, len(values))
			for key := range values {
				flat[key] = values.Get(key)
			}
			if answers := parsePrefixedKeys(flat); len(answers) > 0 {
				id, _ := flat["submissionID"].(string)
				return answers, id, true
			}
		}
	}

	return nil, "", false
}

// parseAnswerObjects reads the structured answers map, where each entry is
// an object carrying the question label, internal name and answer value.
func parseAnswerObjects(raw map[string]interface{}) []answer {
	answers := make([]answer, 0, len(raw))
	for fieldID, entry := range raw {
		obj, ok := entry.(map[string]interface{})
		if !ok {
			answers = append(answers, answer{fieldID: fieldID, value: entry})
			continue
		}
		answers = append(answers, answer{
			fieldID: fieldID,
			name:    stringField(obj, "name"),
			text:    stringField(obj, "text"),
			value:   obj["answer"],
			pretty:  stringField(obj, "prettyFormat"),
		})
	}
	sortAnswers(answers)
	return answers
}

// parsePrefixedKeys converts q<ID>_<fieldName> keys into answers, keeping
// the numeric ID so stable-ID lookup still applies.
func parsePrefixedKeys(flat map[string]interface{}) []answer {
	var answers []answer
	for key, value := range flat {
		fieldID, fieldName, ok := splitPrefixedKey(key)
		if !ok {
			continue
		}
		answers = append(answers, answer{
			fieldID: fieldID,
			name:    fieldName,
			text:    fieldName,
			value:   value,
		})
	}
	sortAnswers(answers)
	return answers
}

// splitPrefixedKey splits "q152_phone" into ("152", "phone", true)
func splitPrefixedKey(key string) (fieldID, fieldName string, ok bool) {
	if !strings.HasPrefix(key, "q") {
		return "", "", false
	}
	underscore := strings.Index(key, "_")
	if underscore < 2 || underscore == len(key)-1 {
		return "", "", false
	}
	fieldID = key[1:underscore]
	if _, err := strconv.Atoi(fieldID); err != nil {
		return "", "", false
	}
	return fieldID, key[underscore+1:], true
}

// sortAnswers orders answers by numeric field ID so heuristic matching is
// deterministic and follows the form's question order.
func sortAnswers(answers []answer) {
	sort.Slice(answers, func(i, j int) bool {
		a, errA := strconv.Atoi(answers[i].fieldID)
		b, errB := strconv.Atoi(answers[j].fieldID)
		if errA != nil || errB != nil {
			return answers[i].fieldID < answers[j].fieldID
		}
		return a < b
	})
}

// fromAnswers maps collected answers onto a guest draft. Each matcher first
// tries its stable field ID, then its aliases against the question label and
// internal name of every unclaimed answer, first hit wins.
func (s *NormalizerService) fromAnswers(answers []answer, submissionID string) *models.NormalizedSubmission {
	fields := make(map[string]string, len(answers))
	for _, a := range answers {
		if a.name != "" {
			fields[a.name] = extractValue(a)
		}
	}

	matched := make(map[string]string, len(fieldMatchers))
	claimed := make(map[int]bool, len(answers))

	for _, m := range fieldMatchers {
		if value, idx, ok := matchAnswer(m, answers, claimed); ok {
			matched[m.field] = value
			claimed[idx] = true
		}
	}

	guest := &models.Guest{
		FullName:            matched["fullName"],
		FirstName:           matched["firstName"],
		LastName:            matched["lastName"],
		Email:               matched["email"],
		PhoneNumber:         matched["phoneNumber"],
		Company:             matched["company"],
		Title:               matched["title"],
		HostName:            matched["hostName"],
		HostEmail:           matched["hostEmail"],
		HostPhone:           matched["hostPhone"],
		PurposeOfVisit:      matched["purposeOfVisit"],
		ExpectedDuration:    matched["expectedDuration"],
		SpecialRequirements: matched["specialRequirements"],
		VisitDate:           matched["visitDate"],
	}

	s.finalize(guest, submissionID)

	return &models.NormalizedSubmission{
		Guest:        guest,
		Fields:       fields,
		SubmissionID: submissionID,
	}
}

// matchAnswer finds the first unclaimed answer for one matcher: stable field
// ID first, then aliases in priority order against label and internal name.
func matchAnswer(m fieldMatcher, answers []answer, claimed map[int]bool) (string, int, bool) {
	if m.fieldID != "" {
		for i, a := range answers {
			if !claimed[i] && a.fieldID == m.fieldID {
				return extractValue(a), i, true
			}
		}
	}

	for _, alias := range m.aliases {
		for i, a := range answers {
			if claimed[i] {
				continue
			}
			if containsFold(a.text, alias) || containsFold(a.name, alias) {
				return extractValue(a), i, true
			}
		}
	}

	return "", 0, false
}

func containsFold(haystack, needle string) bool {
	return haystack != "" && strings.Contains(strings.ToLower(haystack), needle)
}

// extractValue reduces one answer to a string. Plain strings are trimmed,
// composite name and phone objects are joined, checkbox arrays collapse to
// "true" when they carry a consent keyword, and anything else serializes to
// JSON for later manual inspection. This never fails; unrecognized shapes
// must not block guest creation.
func extractValue(a answer) string {
	switch v := a.value.(type) {
	case string:
		return strings.TrimSpace(v)

	case map[string]interface{}:
		first := stringField(v, "first")
		last := stringField(v, "last")
		if first != "" || last != "" {
			return strings.TrimSpace(first + " " + last)
		}

		if full := stringField(v, "full"); full != "" {
			return strings.TrimSpace(full)
		}
		area := stringField(v, "area")
		phone := stringField(v, "phone")
		if area != "" || phone != "" {
			return strings.TrimSpace(area + phone)
		}

		return jsonFallback(v)

	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, strings.TrimSpace(fmt.Sprintf("%v", item)))
		}
		joined := strings.Join(parts, ", ")
		lower := strings.ToLower(joined)
		for _, keyword := range consentKeywords {
			if strings.Contains(lower, keyword) {
				return "true"
			}
		}
		return joined

	case bool:
		return strconv.FormatBool(v)

	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)

	case nil:
		if a.pretty != "" {
			return strings.TrimSpace(a.pretty)
		}
		return ""

	default:
		return jsonFallback(v)
	}
}

func jsonFallback(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// fromGuestShaped reads a payload that already carries guest fields directly
func (s *NormalizerService) fromGuestShaped(body map[string]interface{}) (*models.Guest, map[string]string, bool) {
	if body == nil {
		return nil, nil, false
	}

	guest := &models.Guest{
		FullName:            stringField(body, "fullName", "full_name", "name"),
		FirstName:           stringField(body, "firstName", "first_name"),
		LastName:            stringField(body, "lastName", "last_name"),
		Email:               stringField(body, "email"),
		PhoneNumber:         stringField(body, "phoneNumber", "phone_number", "phone"),
		Company:             stringField(body, "company", "organization"),
		Title:               stringField(body, "title"),
		HostName:            stringField(body, "hostName", "host_name", "host"),
		HostEmail:           stringField(body, "hostEmail", "host_email"),
		HostPhone:           stringField(body, "hostPhone", "host_phone"),
		PurposeOfVisit:      stringField(body, "purposeOfVisit", "purpose_of_visit", "purpose"),
		ExpectedDuration:    stringField(body, "expectedDuration", "expected_duration"),
		SpecialRequirements: stringField(body, "specialRequirements", "special_requirements"),
		VisitDate:           stringField(body, "visitDate", "visit_date"),
	}

	if guest.FullName == "" && guest.FirstName == "" && guest.LastName == "" &&
		guest.Email == "" && guest.PhoneNumber == "" {
		return nil, nil, false
	}

	fields := make(map[string]string, len(body))
	for key, value := range body {
		switch v := value.(type) {
		case string:
			fields[key] = strings.TrimSpace(v)
		case bool:
			fields[key] = strconv.FormatBool(v)
		}
	}

	return guest, fields, true
}

// finalize fills the derived fields every draft carries: split names, an
// assigned ID, pending status and the submission-date default for visitDate.
func (s *NormalizerService) finalize(guest *models.Guest, submissionID string) {
	now := time.Now().UTC()

	if guest.FullName == "" {
		guest.FullName = strings.TrimSpace(guest.FirstName + " " + guest.LastName)
	}
	if guest.FirstName == "" && guest.LastName == "" {
		guest.FirstName, guest.LastName = models.SplitFullName(guest.FullName)
	}

	if guest.VisitDate == "" {
		guest.VisitDate = now.Format("2006-01-02")
	}

	guest.ID = generateGuestID(submissionID, now)
	guest.Status = models.StatusPending
	guest.NotifySlack = true
	guest.CreatedAt = now
	guest.UpdatedAt = now
}

// generateGuestID derives a practically unique ID from the submission
// identifier's tail and the current timestamp. No coordination is needed;
// collisions are treated as statistically negligible.
func generateGuestID(submissionID string, now time.Time) string {
	suffix := submissionID
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	if suffix == "" {
		suffix = strings.ReplaceAll(uuid.New().String(), "-", "")[:6]
	}
	return fmt.Sprintf("guest_%s_%d", suffix, now.UnixMilli())
}

// stringField returns the first non-empty string value among the given keys
func stringField(obj map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if value, ok := obj[key].(string); ok {
			trimmed := strings.TrimSpace(value)
			if trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
