package service

import (
	"context"

	"economy-core/internal/domain"
	"economy-core/internal/logger"
)

// logSink is the default audit sink: it mirrors every record to the
// operational log. Deployments wire a chat-channel sink in its place.
type logSink struct{}

func NewLogSink() AuditSink {
	return logSink{}
}

func (logSink) Notify(_ context.Context, record *domain.TransactionRecord, note string) error {
	args := []any{
		"record_id", record.ID,
		"guild_id", record.GuildID,
		"user_id", record.UserID,
		"type", record.Type,
		"amount", record.Amount,
		"bucket", record.Bucket,
		"created_by", record.CreatedBy,
	}
	if note != "" {
		args = append(args, "note", note)
	}
	logger.Info("audit record", args...)
	return nil
}
