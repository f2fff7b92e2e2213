// ABOUTME: Schema validation of host payload maps into typed operation inputs
// ABOUTME: Validation failures use the same rejection path as gate failures

package gateway

// VisitorInfoInput is the validated payload for setVisitorInfo.
type VisitorInfoInput struct {
	Name        string
	Email       string
	PhoneNumber string
}

// ParseVisitorInfo validates a host payload for setVisitorInfo. All three
// fields must be present as non-empty strings.
func ParseVisitorInfo(payload map[string]any) (VisitorInfoInput, error) {
	name, nameOK := payload["name"].(string)
	email, emailOK := payload["email"].(string)
	phone, phoneOK := payload["phoneNumber"].(string)
	if !nameOK || !emailOK || !phoneOK || name == "" || email == "" || phone == "" {
		return VisitorInfoInput{}, reject(msgVisitorFieldsRequired)
	}
	return VisitorInfoInput{Name: name, Email: email, PhoneNumber: phone}, nil
}

// ParseTags validates a host payload value as a non-empty list of strings.
func ParseTags(v any) ([]string, error) {
	switch raw := v.(type) {
	case []string:
		if len(raw) == 0 {
			return nil, reject(msgTagsRequired)
		}
		return raw, nil
	case []any:
		if len(raw) == 0 {
			return nil, reject(msgTagsRequired)
		}
		tags := make([]string, 0, len(raw))
		for _, entry := range raw {
			s, ok := entry.(string)
			if !ok {
				return nil, reject(msgTagsRequired)
			}
			tags = append(tags, s)
		}
		return tags, nil
	default:
		return nil, reject(msgTagsRequired)
	}
}
