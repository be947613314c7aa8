// Copyright (c) The duochat authors. All rights reserved.

package duochat_test

import (
	"strings"
	"testing"

	"gitlab.com/duo-console/duochat/duochat"
)

func TestBuildSubmissionBaseTier(t *testing.T) {
	session := duochat.NewSession()
	session.AdoptThreadID("thread-1")

	sub := duochat.BuildSubmission(duochat.Capabilities{}, "", "", session, "hello")

	if sub.Variables["question"] != "hello" {
		t.Errorf("question = %v, want hello", sub.Variables["question"])
	}
	if sub.CorrelationID == "" {
		t.Error("correlation id should be generated")
	}
	if sub.Variables["clientSubscriptionId"] != sub.CorrelationID {
		t.Error("clientSubscriptionId should match the correlation id")
	}

	// A base-tier server must never see fields it does not understand, even
	// when the session carries a thread id.
	for _, field := range []string{"platformOrigin", "additionalContext", "conversationType", "threadId"} {
		if _, ok := sub.Variables[field]; ok {
			t.Errorf("base tier submission carries %s", field)
		}
	}
	if strings.Contains(sub.Query, "platformOrigin") || strings.Contains(sub.Query, "threadId") {
		t.Error("base tier mutation document declares gated variables")
	}
}

func TestBuildSubmissionOriginTier(t *testing.T) {
	caps := duochat.Capabilities{PlatformOrigin: true}
	sub := duochat.BuildSubmission(caps, "", "", duochat.NewSession(), "hi")

	if sub.Variables["platformOrigin"] != duochat.DefaultPlatformOrigin {
		t.Errorf("platformOrigin = %v, want %q", sub.Variables["platformOrigin"], duochat.DefaultPlatformOrigin)
	}
	if _, ok := sub.Variables["additionalContext"]; ok {
		t.Error("origin tier submission carries additionalContext")
	}
}

func TestBuildSubmissionCustomOrigin(t *testing.T) {
	caps := duochat.Capabilities{PlatformOrigin: true}
	sub := duochat.BuildSubmission(caps, "", "my-editor", duochat.NewSession(), "hi")
	if sub.Variables["platformOrigin"] != "my-editor" {
		t.Errorf("platformOrigin = %v, want my-editor", sub.Variables["platformOrigin"])
	}
}

func TestBuildSubmissionContextTier(t *testing.T) {
	caps := duochat.Capabilities{PlatformOrigin: true, AdditionalContext: true}
	sub := duochat.BuildSubmission(caps, "", "", duochat.NewSession(), "hi")

	ctx, ok := sub.Variables["additionalContext"].([]any)
	if !ok {
		t.Fatalf("additionalContext = %T, want empty list", sub.Variables["additionalContext"])
	}
	if len(ctx) != 0 {
		t.Errorf("additionalContext = %v, want empty", ctx)
	}
}

func TestBuildSubmissionThreadedTier(t *testing.T) {
	caps := duochat.Capabilities{PlatformOrigin: true, AdditionalContext: true, ConversationThreads: true}

	t.Run("fresh conversation omits thread id", func(t *testing.T) {
		sub := duochat.BuildSubmission(caps, duochat.ConversationTypeChat, "", duochat.NewSession(), "hi")
		if sub.Variables["conversationType"] != duochat.ConversationTypeChat {
			t.Errorf("conversationType = %v", sub.Variables["conversationType"])
		}
		if _, ok := sub.Variables["threadId"]; ok {
			t.Error("fresh conversation should not carry a threadId")
		}
	})

	t.Run("established conversation carries thread id", func(t *testing.T) {
		session := duochat.NewSession()
		session.AdoptThreadID("thread-7")
		sub := duochat.BuildSubmission(caps, duochat.ConversationTypeChat, "", session, "hi")
		if sub.Variables["threadId"] != "thread-7" {
			t.Errorf("threadId = %v, want thread-7", sub.Variables["threadId"])
		}
	})

	t.Run("empty conversation type defaults to legacy", func(t *testing.T) {
		sub := duochat.BuildSubmission(caps, "", "", duochat.NewSession(), "hi")
		if sub.Variables["conversationType"] != duochat.ConversationTypeLegacy {
			t.Errorf("conversationType = %v, want legacy", sub.Variables["conversationType"])
		}
	})

	t.Run("nil session tolerated", func(t *testing.T) {
		sub := duochat.BuildSubmission(caps, duochat.ConversationTypeChat, "", nil, "hi")
		if _, ok := sub.Variables["threadId"]; ok {
			t.Error("nil session should not produce a threadId")
		}
	})
}

// Each tier's variables must be a superset of the previous tier's, so that
// capability downgrades never change the meaning of shared fields.
func TestBuildSubmissionTiersNest(t *testing.T) {
	tiers := []duochat.Capabilities{
		{},
		{PlatformOrigin: true},
		{PlatformOrigin: true, AdditionalContext: true},
		{PlatformOrigin: true, AdditionalContext: true, ConversationThreads: true},
	}

	var prev map[string]any
	for i, caps := range tiers {
		sub := duochat.BuildSubmission(caps, duochat.ConversationTypeChat, "", duochat.NewSession(), "hi")
		for key := range prev {
			if _, ok := sub.Variables[key]; !ok {
				t.Errorf("tier %d dropped variable %s present in tier %d", i, key, i-1)
			}
		}
		prev = sub.Variables
	}
}
