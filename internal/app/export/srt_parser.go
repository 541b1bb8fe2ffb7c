package export

import (
	"fmt"
	"strconv"
	"strings"

	"video-transcriber/internal/app/model"
)

// ParseSRT reads numbered-cue subtitle content back into segments. It is the
// inverse of SRTContent and exists so callers can verify a written subtitle
// round-trips to the offsets it was produced from.
func ParseSRT(content string) ([]model.Segment, error) {
	var segments []model.Segment

	blocks := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n\n")
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.SplitN(block, "\n", 3)
		if len(lines) < 3 {
			return nil, fmt.Errorf("malformed cue: %q", block)
		}
		if _, err := strconv.Atoi(strings.TrimSpace(lines[0])); err != nil {
			return nil, fmt.Errorf("malformed cue index %q: %w", lines[0], err)
		}

		start, end, err := parseTimestampLine(lines[1])
		if err != nil {
			return nil, err
		}
		segments = append(segments, model.Segment{
			Start: start,
			End:   end,
			Text:  strings.TrimSpace(lines[2]),
		})
	}
	return segments, nil
}

func parseTimestampLine(line string) (start, end float64, err error) {
	parts := strings.Split(line, " --> ")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed timestamp line %q", line)
	}
	start, err = parseTimestamp(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	end, err = parseTimestamp(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// parseTimestamp reads HH:MM:SS,mmm back into seconds.
func parseTimestamp(ts string) (float64, error) {
	var hours, minutes, secs, millis int
	if _, err := fmt.Sscanf(ts, "%02d:%02d:%02d,%03d", &hours, &minutes, &secs, &millis); err != nil {
		return 0, fmt.Errorf("malformed timestamp %q: %w", ts, err)
	}
	return float64(hours)*3600 + float64(minutes)*60 + float64(secs) + float64(millis)/1000, nil
}
