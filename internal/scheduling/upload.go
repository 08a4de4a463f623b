package scheduling

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/types"
)

// defaultImportDuration is used when an import row omits the duration column
const defaultImportDuration = 30

var importColumns = []string{"patient_id", "car_id", "scheduled_date", "time_slot", "duration", "exams"}

// ImportCSV parses a CSV schedule and creates one appointment per data row
// through the same validated, conflict-checked path as single creates.
// Rows that fail are reported individually and do not abort the import.
//
// Expected header: patient_id,car_id,scheduled_date,time_slot,duration,exams
// where scheduled_date is YYYY-MM-DD, duration is optional (minutes), and
// exams is a semicolon-separated list.
func (s *Service) ImportCSV(ctx context.Context, filename string, r io.Reader) (*types.ImportReport, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput,
			"invalid file type, expected a .csv file", nil)
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "failed to read CSV header", map[string]interface{}{
			"cause": err.Error(),
		})
	}

	cols, err := importColumnIndexes(header)
	if err != nil {
		return nil, err
	}

	report := &types.ImportReport{Filename: filename, Errors: []string{}}

	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			report.TotalRows++
			report.Errors = append(report.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		report.TotalRows++

		apt, err := rowToAppointment(record, cols)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		if _, err := s.Create(ctx, apt); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		report.Processed++
	}

	s.logger.Infof("Imported schedule %s: %d/%d rows processed, %d errors",
		filename, report.Processed, report.TotalRows, len(report.Errors))
	return report, nil
}

// importColumnIndexes maps the expected columns to their positions in the
// header, tolerating extra columns and arbitrary ordering
func importColumnIndexes(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, required := range []string{"patient_id", "car_id", "scheduled_date", "time_slot"} {
		if _, ok := cols[required]; !ok {
			return nil, types.NewValidationError(types.ErrCodeInvalidInput,
				fmt.Sprintf("CSV is missing required column %q", required), map[string]interface{}{
					"expected_columns": importColumns,
				})
		}
	}

	return cols, nil
}

func rowToAppointment(record []string, cols map[string]int) (*types.Appointment, error) {
	field := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	date, err := time.Parse("2006-01-02", field("scheduled_date"))
	if err != nil {
		return nil, fmt.Errorf("invalid scheduled_date %q, expected YYYY-MM-DD", field("scheduled_date"))
	}

	duration := defaultImportDuration
	if raw := field("duration"); raw != "" {
		duration, err = strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q", raw)
		}
	}

	var exams []string
	if raw := field("exams"); raw != "" {
		for _, exam := range strings.Split(raw, ";") {
			if exam = strings.TrimSpace(exam); exam != "" {
				exams = append(exams, exam)
			}
		}
	}

	return &types.Appointment{
		PatientID:     field("patient_id"),
		CarID:         field("car_id"),
		ScheduledDate: date,
		TimeSlot:      field("time_slot"),
		Duration:      duration,
		Exams:         exams,
	}, nil
}
