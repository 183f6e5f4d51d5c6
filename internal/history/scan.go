package history

import (
	"database/sql"
	"time"
)

const runColumns = "id, started_at, finished_at, output, primary_video, secondary_video, status, encoder, frames_written, frames_total, error_message"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run            Run
		startedRaw     string
		finishedRaw    sql.NullString
		primaryVideo   sql.NullString
		secondaryVideo sql.NullString
		status         string
		encoder        sql.NullString
		errorMessage   sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&startedRaw,
		&finishedRaw,
		&run.Output,
		&primaryVideo,
		&secondaryVideo,
		&status,
		&encoder,
		&run.FramesWritten,
		&run.FramesTotal,
		&errorMessage,
	); err != nil {
		return nil, err
	}
	run.StartedAt = parseTime(startedRaw)
	if finishedRaw.Valid {
		run.FinishedAt = parseTime(finishedRaw.String)
	}
	run.PrimaryVideo = primaryVideo.String
	run.SecondaryVideo = secondaryVideo.String
	run.Status = Status(status)
	run.Encoder = encoder.String
	run.ErrorMessage = errorMessage.String
	return &run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
