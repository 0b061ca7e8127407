package materialize

// Stage is a step of a materialization run
type Stage int

const (
	StageInit Stage = iota
	StageResolveVariables
	StageRegisterTemplates
	StageRender
	StagePromote
	StageDone
	StageAborted
)

// String returns the stage name used in logs and error details
func (s Stage) String() string {
	switch s {
	case StageInit:
		return "Init"
	case StageResolveVariables:
		return "ResolveVariables"
	case StageRegisterTemplates:
		return "RegisterTemplates"
	case StageRender:
		return "StageRender"
	case StagePromote:
		return "Promote"
	case StageDone:
		return "Done"
	case StageAborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}
