package negotiate_test

import (
	"strings"
	"testing"

	"github.com/promptform/promptform/pkg/model"
	"github.com/promptform/promptform/pkg/negotiate"
)

func clarification() model.ClarificationRequest {
	return model.ClarificationRequest{
		Contradiction: "Anonymous forms cannot require a phone number.",
		Questions: []string{
			"Should the form be anonymous or collect phone numbers?",
			"Is the phone number optional?",
		},
	}
}

func TestAmend_OriginalTextStaysVerbatimPrefix(t *testing.T) {
	original := "anonymous feedback form with required phone number"

	amended := negotiate.Amend(original, []string{"A1", "A2"})

	if !strings.HasPrefix(amended, original) {
		t.Fatalf("original description must stay a verbatim prefix:\n%s", amended)
	}
	if !strings.Contains(amended, "Clarifications:") {
		t.Fatal("labeled clarifications block missing")
	}
	a1 := strings.Index(amended, "A1")
	a2 := strings.Index(amended, "A2")
	if a1 < 0 || a2 < 0 || a1 > a2 {
		t.Fatalf("answers must appear in question order:\n%s", amended)
	}
}

func TestSession_FullRoundTrip(t *testing.T) {
	sess := negotiate.Start("a description")
	if sess.Phase != negotiate.PhaseIdle {
		t.Fatalf("new session phase = %q", sess.Phase)
	}

	sess, err := sess.ReceiveClarification(clarification())
	if err != nil {
		t.Fatalf("receive clarification: %v", err)
	}
	if sess.Phase != negotiate.PhaseAwaitingAnswers || sess.Round != 1 {
		t.Fatalf("unexpected session: %+v", sess)
	}

	sess, err = sess.SubmitAnswers([]string{"anonymous", "drop the phone field"})
	if err != nil {
		t.Fatalf("submit answers: %v", err)
	}
	if sess.Phase != negotiate.PhaseIdle {
		t.Fatalf("session should be idle and ready to resubmit, got %q", sess.Phase)
	}
	if !strings.HasPrefix(sess.Description, "a description") {
		t.Fatalf("description lost its prefix: %q", sess.Description)
	}
	if sess.Clarification != nil {
		t.Fatal("clarification should be consumed")
	}
}

func TestSession_RejectsIncompleteAnswers(t *testing.T) {
	sess, err := negotiate.Start("d").ReceiveClarification(clarification())
	if err != nil {
		t.Fatalf("receive clarification: %v", err)
	}

	if _, err := sess.SubmitAnswers([]string{"only one"}); err == nil {
		t.Fatal("answer count mismatch should be rejected")
	}
	if _, err := sess.SubmitAnswers([]string{"fine", "   "}); err == nil {
		t.Fatal("blank answers should be rejected")
	}
}

func TestSession_CancelRestoresIdleWithoutAmending(t *testing.T) {
	sess, err := negotiate.Start("original text").ReceiveClarification(clarification())
	if err != nil {
		t.Fatalf("receive clarification: %v", err)
	}

	sess = sess.Cancel()

	if sess.Phase != negotiate.PhaseIdle {
		t.Fatalf("cancel should restore idle, got %q", sess.Phase)
	}
	if sess.Description != "original text" {
		t.Fatalf("cancel must not amend the description: %q", sess.Description)
	}
}

func TestSession_ClarificationOnlyFromIdle(t *testing.T) {
	sess, err := negotiate.Start("d").ReceiveClarification(clarification())
	if err != nil {
		t.Fatalf("receive clarification: %v", err)
	}
	if _, err := sess.ReceiveClarification(clarification()); err == nil {
		t.Fatal("second clarification while awaiting answers should be rejected")
	}
}
