package tipc

// Mode is the operational phase token selecting which preparation
// behavior (if any) executes.
type Mode string

// Documented TIPC modes. Only ModeBenchmarkTrain has observable behavior
// in the preparer; the rest are explicit no-ops.
const (
	ModeLiteTrainLiteInfer   Mode = "lite_train_lite_infer"
	ModeLiteTrainWholeInfer  Mode = "lite_train_whole_infer"
	ModeWholeTrainWholeInfer Mode = "whole_train_whole_infer"
	ModeWholeInfer           Mode = "whole_infer"
	ModeKLQuantWholeInfer    Mode = "klquant_whole_infer"
	ModeCPPInfer             Mode = "cpp_infer"
	ModeServingInfer         Mode = "serving_infer"
	ModeBenchmarkTrain       Mode = "benchmark_train"
	ModeUnknown              Mode = ""
)

// knownModes lists every documented mode token.
var knownModes = []Mode{
	ModeLiteTrainLiteInfer,
	ModeLiteTrainWholeInfer,
	ModeWholeTrainWholeInfer,
	ModeWholeInfer,
	ModeKLQuantWholeInfer,
	ModeCPPInfer,
	ModeServingInfer,
	ModeBenchmarkTrain,
}

// ParseMode maps a mode string to its Mode. Unrecognized strings map to
// ModeUnknown rather than an error: the preparer treats them the same as
// any non-benchmark mode, a no-op.
func ParseMode(s string) Mode {
	for _, m := range knownModes {
		if string(m) == s {
			return m
		}
	}
	return ModeUnknown
}

// Known reports whether the mode is one of the documented tokens.
func (m Mode) Known() bool { return m != ModeUnknown }

func (m Mode) String() string {
	if m == ModeUnknown {
		return "unknown"
	}
	return string(m)
}
