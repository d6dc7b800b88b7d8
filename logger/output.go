package logger

// OutputCategory names a kind of CLI output gated by verbosity.
type OutputCategory int

const (
	// Level 0 - always shown
	OutputResults OutputCategory = iota
	OutputErrors

	// Level 1 - progress
	OutputProgress
	OutputSkipped

	// Level 2 - details
	OutputPlan
	OutputConfig
	OutputTiming

	// Level 3 - specs
	OutputSpecs

	// Level 4 - full dump
	OutputSourceDump
)

var categoryLevels = map[OutputCategory]int{
	OutputResults: VerbosityUser,
	OutputErrors:  VerbosityUser,

	OutputProgress: VerbosityInfo,
	OutputSkipped:  VerbosityInfo,

	OutputPlan:   VerbosityDebug,
	OutputConfig: VerbosityDebug,
	OutputTiming: VerbosityDebug,

	OutputSpecs: VerbosityTrace,

	OutputSourceDump: VerbosityAll,
}

var categoryNames = map[OutputCategory]string{
	OutputResults:    "results",
	OutputErrors:     "errors",
	OutputProgress:   "progress",
	OutputSkipped:    "skipped",
	OutputPlan:       "plan",
	OutputConfig:     "config",
	OutputTiming:     "timing",
	OutputSpecs:      "specs",
	OutputSourceDump: "source-dump",
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		// Unknown category, default to highest verbosity required
		return verbosity >= VerbosityAll
	}
	return verbosity >= minLevel
}

// CategoryName returns the human-readable name for an output category
func CategoryName(category OutputCategory) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return "unknown"
}

// VerbosityDescription returns a description of what's shown at each level
func VerbosityDescription(verbosity int) string {
	switch verbosity {
	case VerbosityUser:
		return "results and errors only"
	case VerbosityInfo:
		return "results, errors, progress and skipped members"
	case VerbosityDebug:
		return "above + planned members, config, timing"
	case VerbosityTrace:
		return "above + normalized record specs"
	case VerbosityAll:
		return "full output including generated source"
	default:
		if verbosity > VerbosityAll {
			return "maximum verbosity"
		}
		return "unknown verbosity level"
	}
}
