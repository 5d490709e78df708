package tipc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input string
		want  Mode
		known bool
	}{
		{"lite_train_lite_infer", ModeLiteTrainLiteInfer, true},
		{"lite_train_whole_infer", ModeLiteTrainWholeInfer, true},
		{"whole_train_whole_infer", ModeWholeTrainWholeInfer, true},
		{"whole_infer", ModeWholeInfer, true},
		{"klquant_whole_infer", ModeKLQuantWholeInfer, true},
		{"cpp_infer", ModeCPPInfer, true},
		{"serving_infer", ModeServingInfer, true},
		{"benchmark_train", ModeBenchmarkTrain, true},
		{"", ModeUnknown, false},
		{"bench", ModeUnknown, false},
		{"benchmark_train ", ModeUnknown, false},
		{"BENCHMARK_TRAIN", ModeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseMode(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.known, got.Known())
		})
	}
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "benchmark_train", ModeBenchmarkTrain.String())
	assert.Equal(t, "unknown", ModeUnknown.String())
}
