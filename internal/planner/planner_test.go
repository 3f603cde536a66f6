package planner

import (
	"strings"
	"testing"

	"github.com/harshul/builder/internal/vars"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBanner(t *testing.T) {
	got := Banner("echo hi")
	want := `echo -e '\n###############\n### echo hi ###\n###############\n'`
	assert.Equal(t, want, got)
}

func TestBannerTruncatesLongTitles(t *testing.T) {
	long := strings.Repeat("x", 150)

	got := Banner(long)

	sep := strings.Repeat("#", 8+MaxTitle)
	want := `echo -e '\n` + sep + `\n### ` + strings.Repeat("x", MaxTitle) + ` ###\n` + sep + `\n'`
	assert.Equal(t, want, got)
}

func TestTruncateCountsCharacters(t *testing.T) {
	text := strings.Repeat("é", 120)
	assert.Equal(t, strings.Repeat("é", MaxTitle), Truncate(text))
	assert.Equal(t, "short", Truncate("short"))
}

func TestPlan(t *testing.T) {
	computed := vars.FromPairs(vars.Pair{Key: "bt", Value: "Release"})
	user := vars.FromPairs(vars.Pair{Key: "jobs", Value: "4"})

	p := Plan([]string{"cmake -DCMAKE_BUILD_TYPE={bt} .", "make -j{jobs}"}, computed, user)

	require.Len(t, p.Stages, 2)
	assert.Equal(t, []string{"cmake -DCMAKE_BUILD_TYPE=Release .", "make -j4"}, p.Commands())
	assert.Equal(t, Banner("make -j4"), p.Stages[1].Banner)

	want := Banner("cmake -DCMAKE_BUILD_TYPE=Release .") + " && cmake -DCMAKE_BUILD_TYPE=Release . && " +
		Banner("make -j4") + " && make -j4"
	assert.Equal(t, want, p.String())
}

func TestPlanEmpty(t *testing.T) {
	p := Plan(nil, vars.Map{}, vars.Map{})
	assert.True(t, p.Empty())
	assert.Equal(t, "", p.String())
}

func TestPlanSingleStep(t *testing.T) {
	p := Plan([]string{"echo hi"}, vars.Map{}, vars.Map{})
	assert.Equal(t, Banner("echo hi")+" && echo hi", p.String())
}
