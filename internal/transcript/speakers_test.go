package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const meeting = `PM: 오늘 회의 시작하겠습니다.
QA 엔지니어: 테스트 일정은 다음 주 화요일입니다.
  개발자 김: 내일까지 API 수정하겠습니다.
PM: 좋습니다. 10월 3일 배포로 하죠.
(잠시 휴식)

PM: 이거 해주세요`

func TestExtractSpeakers(t *testing.T) {
	set := ExtractSpeakers(meeting)

	assert.Equal(t, 3, set.Len())
	assert.Equal(t, []string{"PM", "QA 엔지니어", "개발자 김"}, set.Labels())
	assert.Equal(t, []string{"PM", "QA엔지니어", "개발자김"}, set.Normalized())
}

func TestExtractSpeakers_LabelIsTextBeforeFirstColon(t *testing.T) {
	set := ExtractSpeakers("PM: 시간은 10:30 입니다\n:빈 라벨\n  : 공백 라벨")

	assert.Equal(t, []string{"PM"}, set.Labels())
}

func TestExtractSpeakers_NoDialogue(t *testing.T) {
	set := ExtractSpeakers("회의록 없음\n\n")

	assert.Zero(t, set.Len())
	assert.Empty(t, set.Normalized())
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"PM", "PM"},
		{"  PM  ", "PM"},
		{"QA 엔지니어", "QA엔지니어"},
		{"QA엔지니어", "QA엔지니어"},
		{"개발자\t 김\n", "개발자김"},
		{"   ", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.in))
		})
	}
}

func TestNormalizeName_Idempotent(t *testing.T) {
	for _, in := range []string{"QA 엔지니어", " a b c ", "PM", "디자이너 / 기획자"} {
		once := NormalizeName(in)
		require.Equal(t, once, NormalizeName(once), "input %q", in)
	}
}
