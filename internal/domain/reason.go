package domain

import "strings"

// ReasonCode classifies the outcome of one wallet evaluation.
type ReasonCode string

const (
	ReasonPass     ReasonCode = "PASS"
	ReasonJSONFail ReasonCode = "JSON_FAIL"
	ReasonPnL30Low ReasonCode = "PNL30_LOW"
	ReasonROILow   ReasonCode = "ROI_LOW"
	ReasonError    ReasonCode = "ERROR"
)

const tagReasonPrefix = "TAG_"

// TagReason builds the rejection code for a disallowed wallet tag,
// e.g. TAG_sandwich_bot.
func TagReason(tag string) ReasonCode {
	return ReasonCode(tagReasonPrefix + tag)
}

// String returns the string representation of ReasonCode.
func (r ReasonCode) String() string {
	return string(r)
}

// IsTag reports whether the reason is a tag rejection.
func (r ReasonCode) IsTag() bool {
	return strings.HasPrefix(string(r), tagReasonPrefix) && len(r) > len(tagReasonPrefix)
}

// IsValid checks if the reason is a known code or a tag rejection.
func (r ReasonCode) IsValid() bool {
	switch r {
	case ReasonPass, ReasonJSONFail, ReasonPnL30Low, ReasonROILow, ReasonError:
		return true
	}
	return r.IsTag()
}
