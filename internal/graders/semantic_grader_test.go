package graders

import (
	"context"
	"errors"
	"testing"

	"github.com/spboyer/taskqa/internal/embedding"
	"github.com/spboyer/taskqa/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// fixedEncoder returns canned vectors per text.
func fixedEncoder(vectors map[string][]float32) embedding.Encoder {
	return embedding.EncoderFunc(func(_ context.Context, text string) ([]float32, error) {
		v, ok := vectors[text]
		if !ok {
			return nil, errors.New("unexpected text: " + text)
		}
		return v, nil
	})
}

const semanticTranscript = "PM: 배포 일정 공유 부탁드립니다"

func TestSemanticGrader_ExactlyOneFlagged(t *testing.T) {
	enc := fixedEncoder(map[string][]float32{
		semanticTranscript: {1, 0, 0},
		"배포 일정 공유":         {0.99, 0.1, 0},  // ~0.995
		"일정 공유 부탁":         {0.95, 0.2, 0},  // ~0.98
		"점심 메뉴 고르기":        {0.1, 0, 0.99}, // ~0.10
	})
	g, err := NewSemanticGrader(SemanticGraderArgs{Encoder: enc, Threshold: 0.5})
	require.NoError(t, err)

	results, err := g.Grade(context.Background(), &Context{
		Transcript: semanticTranscript,
		Output: &models.AssistantOutput{Tasks: []models.Task{
			{What: "배포 일정 공유"},
			{What: "점심 메뉴 고르기"},
			{What: "일정 공유 부탁"},
		}},
	})
	require.NoError(t, err)

	assert.False(t, results.Passed)
	assert.Equal(t, 3, results.Checked)
	require.Len(t, results.Flags, 1)
	assert.Equal(t, 1, results.Flags[0].TaskIndex)
	assert.Equal(t, "점심 메뉴 고르기", results.Flags[0].Value)
	assert.Less(t, results.Flags[0].Similarity, 0.3)
}

func TestSemanticGrader_TranscriptEncodedOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	enc := embedding.NewMockEncoder(ctrl)

	enc.EXPECT().Encode(gomock.Any(), semanticTranscript).Return([]float32{1, 0}, nil).Times(1)
	enc.EXPECT().Encode(gomock.Any(), "a").Return([]float32{1, 0}, nil)
	enc.EXPECT().Encode(gomock.Any(), "b").Return([]float32{0, 1}, nil)

	g, err := NewSemanticGrader(SemanticGraderArgs{Encoder: enc, Threshold: 0.5})
	require.NoError(t, err)

	results, err := g.Grade(context.Background(), &Context{
		Transcript: semanticTranscript,
		Output:     &models.AssistantOutput{Tasks: []models.Task{{What: "a"}, {What: "b"}}},
	})
	require.NoError(t, err)
	require.Len(t, results.Flags, 1)
	assert.Equal(t, 1, results.Flags[0].TaskIndex)
}

func TestSemanticGrader_BlankWhatSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	enc := embedding.NewMockEncoder(ctrl)
	// no Encode calls expected

	g, err := NewSemanticGrader(SemanticGraderArgs{Encoder: enc, Threshold: 0.5})
	require.NoError(t, err)

	results, err := g.Grade(context.Background(), &Context{
		Transcript: semanticTranscript,
		Output:     &models.AssistantOutput{Tasks: []models.Task{{What: ""}, {What: "  "}}},
	})
	require.NoError(t, err)
	assert.True(t, results.Passed)
	assert.Zero(t, results.Checked)
}

func TestSemanticGrader_EncoderFailureIsReturned(t *testing.T) {
	ctrl := gomock.NewController(t)
	enc := embedding.NewMockEncoder(ctrl)
	boom := errors.New("connection refused")
	enc.EXPECT().Encode(gomock.Any(), gomock.Any()).Return(nil, boom)

	g, err := NewSemanticGrader(SemanticGraderArgs{Encoder: enc, Threshold: 0.5})
	require.NoError(t, err)

	_, err = g.Grade(context.Background(), &Context{
		Transcript: semanticTranscript,
		Output:     &models.AssistantOutput{Tasks: []models.Task{{What: "a"}}},
	})
	assert.ErrorIs(t, err, boom)
}

func TestSemanticGrader_RequiresEncoder(t *testing.T) {
	_, err := NewSemanticGrader(SemanticGraderArgs{Name: "sem"})
	assert.ErrorContains(t, err, "requires an encoder")
}

func TestCreate(t *testing.T) {
	enc := fixedEncoder(nil)

	t.Run("semantic default threshold", func(t *testing.T) {
		g, err := Create(models.GraderKindSemantic, "sem", nil, enc)
		require.NoError(t, err)
		assert.Equal(t, models.GraderKindSemantic, g.Kind())
		assert.Equal(t, DefaultSimilarityThreshold, g.(*semanticGrader).threshold)
	})

	t.Run("semantic threshold from params", func(t *testing.T) {
		g, err := Create(models.GraderKindSemantic, "sem", map[string]any{"threshold": 0.7}, enc)
		require.NoError(t, err)
		assert.Equal(t, 0.7, g.(*semanticGrader).threshold)
	})

	t.Run("semantic zero threshold from params", func(t *testing.T) {
		g, err := Create(models.GraderKindSemantic, "sem", map[string]any{"threshold": 0.0}, enc)
		require.NoError(t, err)
		assert.Equal(t, 0.0, g.(*semanticGrader).threshold)
	})

	t.Run("who with delimiters", func(t *testing.T) {
		g, err := Create(models.GraderKindWho, "who", map[string]any{"delimiters": ";"}, nil)
		require.NoError(t, err)
		assert.Equal(t, ";", g.(*whoGrader).delimiters)
	})

	t.Run("when with patterns", func(t *testing.T) {
		g, err := Create(models.GraderKindWhen, "when", map[string]any{"patterns": []string{`ASAP`}}, nil)
		require.NoError(t, err)
		assert.Len(t, g.(*whenGrader).patterns, 8)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := Create(models.GraderKindSchema, "schema", nil, nil)
		assert.ErrorContains(t, err, "not a valid grader type")
	})
}
