package domain

// ResponseCategory is the coarse three-way self-assessment collected by
// UIs that do not expose the full 0-5 quality scale. It maps onto fixed
// quality scores via sm2.ResponseToQuality.
type ResponseCategory string

const (
	ResponseKnow      ResponseCategory = "know"
	ResponseDifficult ResponseCategory = "difficult"
	ResponseUnknown   ResponseCategory = "unknown"
)

// IsValid reports whether r is one of the three known categories.
func (r ResponseCategory) IsValid() bool {
	switch r {
	case ResponseKnow, ResponseDifficult, ResponseUnknown:
		return true
	}
	return false
}

func (r ResponseCategory) String() string {
	return string(r)
}
