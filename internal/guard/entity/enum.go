package entity

type LogKind string

const (
	// LogKindCode mean a code was issued.
	LogKindCode LogKind = "CODE"

	// LogKindLimit mean a request was denied by the usage ledger.
	LogKindLimit LogKind = "LIMIT"

	// LogKindError mean code generation failed for a matched trigger.
	LogKindError LogKind = "ERROR"
)

type RegStep int16

const (
	// RegStepSecret waits for the shared secret.
	RegStepSecret RegStep = 1

	// RegStepName waits for the account's display name.
	RegStepName RegStep = 2

	// RegStepTrigger waits for the trigger phrase.
	RegStepTrigger RegStep = 3

	// RegStepLimit waits for the per-buyer request cap.
	RegStepLimit RegStep = 4

	// RegStepPeriod waits for the cap's rolling window in hours.
	RegStepPeriod RegStep = 5
)

func (s RegStep) String() string {
	switch s {
	case RegStepSecret:
		return "secret"
	case RegStepName:
		return "name"
	case RegStepTrigger:
		return "trigger"
	case RegStepLimit:
		return "limit"
	case RegStepPeriod:
		return "period"
	default:
		return "unknown"
	}
}
