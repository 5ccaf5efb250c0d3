package classifier

import (
	"strings"
	"testing"

	"github.com/LouYuanbo1/rostercrawler/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_OnlineMember(t *testing.T) {
	rec := Classify("Level 1\nJane Doe\nOnline now\n@jane123\nJoined Jun 1, 2025\nFree")

	assert.Equal(t, "Level 1", rec.Tier)
	assert.Equal(t, "Jane Doe", rec.Name)
	assert.Equal(t, "Online now", rec.Activity)
	assert.Equal(t, "@jane123", rec.Handle)
	assert.Equal(t, "Jun 1, 2025", rec.Joined)
	assert.Equal(t, "Free", rec.Value)
	assert.Equal(t, model.NotAvailable, rec.Renewal)
	assert.Equal(t, model.NotAvailable, rec.Bio)
	assert.Equal(t, model.NotAvailable, rec.Location)
	assert.Empty(t, rec.Diagnostic)
}

func TestClassify_AllFields(t *testing.T) {
	text := strings.Join([]string{
		"[IMG]",
		"Level 3 #vip",
		"Carlos Pérez",
		"Chat",
		"Membership settings",
		"Active 2h ago",
		"@carlos-perez",
		"Joined Mar 15, 2024",
		"$49/month",
		"Renews in 12 days",
		"Invited by Ana",
		"Invitado por Luis",
		"Emprendedor digital",
		"Avenida 68 #45",
	}, "\n")

	rec := Classify(text)

	assert.Equal(t, "Level 3", rec.Tier)
	assert.Equal(t, "Carlos Pérez", rec.Name)
	assert.Equal(t, "2h ago", rec.Activity)
	assert.Equal(t, "@carlos-perez", rec.Handle)
	assert.Equal(t, "Mar 15, 2024", rec.Joined)
	assert.Equal(t, "$49/month", rec.Value)
	assert.Equal(t, "12 days", rec.Renewal)
	assert.Equal(t, "Invited by Ana", rec.InvitedBy)
	assert.Equal(t, "Invitado por Luis", rec.Invited)
	assert.Equal(t, "Emprendedor digital", rec.Bio)
	assert.Equal(t, "Avenida 68", rec.Location)
}

func TestClassify_RuleOrder(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		check func(t *testing.T, rec model.MemberRecord)
	}{
		{"renew without days keeps raw line", "Renewal pending", func(t *testing.T, rec model.MemberRecord) {
			assert.Equal(t, "Renewal pending", rec.Renewal)
		}},
		{"active with nothing after keeps line", "Active", func(t *testing.T, rec model.MemberRecord) {
			assert.Equal(t, "Active", rec.Activity)
		}},
		{"lowercase active keeps line", "inactive for a while", func(t *testing.T, rec model.MemberRecord) {
			assert.Equal(t, "inactive for a while", rec.Activity)
		}},
		{"online beats active", "Online now Active", func(t *testing.T, rec model.MemberRecord) {
			assert.Equal(t, "Online now", rec.Activity)
		}},
		{"euro value", "€10", func(t *testing.T, rec model.MemberRecord) {
			assert.Equal(t, "€10", rec.Value)
		}},
		{"invitó is inviter", "Te invitó Marta", func(t *testing.T, rec model.MemberRecord) {
			assert.Equal(t, "Te invitó Marta", rec.InvitedBy)
			assert.Equal(t, model.NotAvailable, rec.Invited)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Classify("Level 1\nSomeone\n"+tt.line))
		})
	}
}

func TestClassify_FewerThanTwoLines(t *testing.T) {
	for _, text := range []string{"", "   \n\n", "[IMG]\nJust a name", "Level 1\nChat with me", "#tag\n[IMG]"} {
		rec := Classify(text)
		assert.Equal(t, model.NewMemberRecord(), rec, "input %q", text)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	text := "Level 2\nMaría\nActive 5m ago\n@maria\nJoined Jan 9, 2023\nviajera\nCalle 10 #4-5"
	first := Classify(text)
	for range 20 {
		assert.Equal(t, first, Classify(text))
	}
}

func TestClassify_RecoversFromPanickingRule(t *testing.T) {
	c := New(Rule{
		Name:  "broken",
		Match: func(string, string) bool { return true },
		Apply: func(*model.MemberRecord, string) { panic("bad rule") },
	})

	rec := c.Classify("Level 1\nJane\nanything")

	assert.Equal(t, model.NotAvailable, rec.Tier)
	assert.Equal(t, model.NotAvailable, rec.Name)
	assert.Contains(t, rec.Diagnostic, "bad rule")
}

func TestStripNoise_Idempotent(t *testing.T) {
	text := "[IMG]Level 1 #top\nJane #ñandú_2\nJoined Jun 1, 2025"
	once := StripNoise(text)
	assert.Equal(t, once, StripNoise(once))
	assert.NotContains(t, once, "[IMG]")
	assert.NotContains(t, once, "#")
}

func TestResolveRemainder_LocationAndBio(t *testing.T) {
	rec := model.NewMemberRecord()
	resolveRemainder(&rec, []string{"Calle 5 #10-20", "loves hiking"})

	assert.Equal(t, "Calle 5 #10-20", rec.Location)
	assert.Equal(t, "loves hiking", rec.Bio)
}

func TestResolveRemainder_CorrectsLocationWithoutAddressKeyword(t *testing.T) {
	rec := model.NewMemberRecord()
	// 匹配 "word word, word" 形状但不含地址关键字
	resolveRemainder(&rec, []string{"Bogota Centro, Colombia"})

	assert.Equal(t, "Bogota Centro, Colombia", rec.Bio)
	assert.Equal(t, model.NotAvailable, rec.Location)
}

func TestResolveRemainder_ExtraLinesDropped(t *testing.T) {
	rec := model.NewMemberRecord()
	resolveRemainder(&rec, []string{"first phrase", "second phrase", "Carrera 7 #3"})

	assert.Equal(t, "first phrase", rec.Bio)
	assert.Equal(t, "Carrera 7 #3", rec.Location)
}

func TestIsLocationLike(t *testing.T) {
	assert.True(t, IsLocationLike("Calle-12"))
	assert.True(t, IsLocationLike("Medellín Centro, Antioquia"))
	assert.True(t, IsLocationLike("cra 45"))
	assert.False(t, IsLocationLike("loves hiking"))
	require.False(t, IsLocationLike("Building brands"))
}
