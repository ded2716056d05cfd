package billing

import (
	"testing"
	"time"

	vo "mensajio/internal/domain/billing/valueobjects"
	"mensajio/internal/shared/biztime"
)

func TestNewConsumptionRecord(t *testing.T) {
	tests := []struct {
		name           string
		accountID      uint
		messageID      uint
		conversationID uint
		kind           vo.MessageKind
		source         vo.ConsumptionSource
		remainingAfter int
		wantErr        bool
		errMsg         string
	}{
		{
			name:           "valid record",
			accountID:      1,
			messageID:      100,
			conversationID: 10,
			kind:           vo.MessageKindIncoming,
			source:         vo.SourceAgent,
			remainingAfter: 49,
			wantErr:        false,
		},
		{
			name:           "zero remaining is allowed",
			accountID:      1,
			messageID:      101,
			conversationID: 10,
			kind:           vo.MessageKindOutgoing,
			source:         vo.SourceBot,
			remainingAfter: 0,
			wantErr:        false,
		},
		{
			name:           "missing account",
			accountID:      0,
			messageID:      100,
			conversationID: 10,
			kind:           vo.MessageKindIncoming,
			source:         vo.SourceAgent,
			remainingAfter: 49,
			wantErr:        true,
			errMsg:         "account ID is required",
		},
		{
			name:           "missing message",
			accountID:      1,
			messageID:      0,
			conversationID: 10,
			kind:           vo.MessageKindIncoming,
			source:         vo.SourceAgent,
			remainingAfter: 49,
			wantErr:        true,
			errMsg:         "message ID is required",
		},
		{
			name:           "missing conversation",
			accountID:      1,
			messageID:      100,
			conversationID: 0,
			kind:           vo.MessageKindIncoming,
			source:         vo.SourceAgent,
			remainingAfter: 49,
			wantErr:        true,
			errMsg:         "conversation ID is required",
		},
		{
			name:           "invalid message kind",
			accountID:      1,
			messageID:      100,
			conversationID: 10,
			kind:           vo.MessageKind("sticker"),
			source:         vo.SourceAgent,
			remainingAfter: 49,
			wantErr:        true,
			errMsg:         "invalid message kind: sticker",
		},
		{
			name:           "invalid source",
			accountID:      1,
			messageID:      100,
			conversationID: 10,
			kind:           vo.MessageKindIncoming,
			source:         vo.ConsumptionSource("crm"),
			wantErr:        true,
			errMsg:         "invalid consumption source: crm",
		},
		{
			name:           "negative remaining",
			accountID:      1,
			messageID:      100,
			conversationID: 10,
			kind:           vo.MessageKindIncoming,
			source:         vo.SourceAgent,
			remainingAfter: -1,
			wantErr:        true,
			errMsg:         "remaining after cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := NewConsumptionRecord(
				tt.accountID, tt.messageID, tt.conversationID,
				tt.kind, tt.source, tt.remainingAfter, nil,
			)

			if tt.wantErr {
				if err == nil {
					t.Errorf("NewConsumptionRecord() expected error, got nil")
					return
				}
				if err.Error() != tt.errMsg {
					t.Errorf("NewConsumptionRecord() error = %v, want %v", err.Error(), tt.errMsg)
				}
				return
			}

			if err != nil {
				t.Errorf("NewConsumptionRecord() unexpected error = %v", err)
				return
			}

			if record.AccountID() != tt.accountID {
				t.Errorf("AccountID() = %v, want %v", record.AccountID(), tt.accountID)
			}
			if record.RemainingAfter() != tt.remainingAfter {
				t.Errorf("RemainingAfter() = %v, want %v", record.RemainingAfter(), tt.remainingAfter)
			}
			if record.Metadata() == nil {
				t.Errorf("Metadata() should never be nil")
			}

			wantDate := biztime.DateInBiz(biztime.NowUTC())
			if !record.ConsumptionDate().Equal(wantDate) {
				t.Errorf("ConsumptionDate() = %v, want %v", record.ConsumptionDate(), wantDate)
			}
		})
	}
}

func TestReconstructConsumptionRecord(t *testing.T) {
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	meta := map[string]interface{}{"channel": "whatsapp"}

	record, err := ReconstructConsumptionRecord(
		7, 1, 100, 10,
		vo.MessageKindTemplate, vo.SourceAPI,
		date, 20, meta, date,
	)
	if err != nil {
		t.Fatalf("ReconstructConsumptionRecord() unexpected error = %v", err)
	}

	if record.ID() != 7 {
		t.Errorf("ID() = %v, want 7", record.ID())
	}
	if record.MessageID() != 100 {
		t.Errorf("MessageID() = %v, want 100", record.MessageID())
	}
	if record.MessageKind() != vo.MessageKindTemplate {
		t.Errorf("MessageKind() = %v, want %v", record.MessageKind(), vo.MessageKindTemplate)
	}
	if record.Metadata()["channel"] != "whatsapp" {
		t.Errorf("Metadata() missing channel entry")
	}

	if _, err := ReconstructConsumptionRecord(
		0, 1, 100, 10,
		vo.MessageKindTemplate, vo.SourceAPI,
		date, 20, nil, date,
	); err == nil {
		t.Errorf("ReconstructConsumptionRecord() with zero ID expected error, got nil")
	}
}
