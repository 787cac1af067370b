package watch

// CheckType names one watcher category. The set is closed: the recorder has
// one derivation policy per type.
type CheckType string

const (
	CheckPI         CheckType = "pi"
	CheckSkillQueue CheckType = "skillq"
	CheckIndustry   CheckType = "industry"
	CheckContract   CheckType = "contract"
)

// CheckTypes is the fixed ingestion order within a cycle.
var CheckTypes = []CheckType{CheckPI, CheckSkillQueue, CheckIndustry, CheckContract}

func IsCheckType(value string) bool {
	for _, t := range CheckTypes {
		if string(t) == value {
			return true
		}
	}
	return false
}

// Status is the tri-state outcome of one character check.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// SkillQueueActive is the watcher-reported queue state that counts as healthy.
const SkillQueueActive = "active"

// DerivePIStatus: any alert fails the character, otherwise it passes.
func DerivePIStatus(alertCount int) Status {
	if alertCount > 0 {
		return StatusFail
	}
	return StatusPass
}

// DeriveSkillQueueStatus: alert presence dominates; with zero alerts an
// inactive queue is a warning, not a failure.
func DeriveSkillQueueStatus(alertCount int, queueState string) Status {
	if alertCount > 0 {
		return StatusFail
	}
	if queueState == SkillQueueActive {
		return StatusPass
	}
	return StatusWarn
}

// DeriveIndustryStatus: ready-job counts are informational only, alerts decide.
func DeriveIndustryStatus(alertCount int) Status {
	if alertCount > 0 {
		return StatusFail
	}
	return StatusPass
}
