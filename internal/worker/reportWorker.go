package worker

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/cradoe/indigene/internal/handler"
	"github.com/cradoe/indigene/internal/models"
	"github.com/cradoe/indigene/internal/repository"
	"github.com/cradoe/indigene/internal/smtp"
	"github.com/cradoe/indigene/internal/stream"
)

// csvHeader is the fixed column set of the applications export. Blank
// optional fields are rendered as N/A.
var csvHeader = []string{
	"S/N",
	"Full Names",
	"NIN",
	"Father's Name",
	"Mother's Name",
	"Native Town",
	"Native Political Ward",
	"Village",
	"Community Head",
	"Community Head Contact",
	"Current Address",
	"LGA",
	"State of Origin",
	"Is Resident?",
	"LGA of Resident",
	"Application Status",
	"Approval/Rejection Date",
	"Date Created",
	"Time Created",
}

// ReportWorker re-runs the filtered applications query for each export
// request, renders the rows as CSV and emails the file. Running the
// query here rather than in the HTTP handler keeps large exports off
// the request path entirely.
func (wk *Worker) ReportWorker() {
	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: applicationReportGroupID,
		Topic:   stream.ApplicationReportTopic,
	})

	if err != nil {
		log.Fatalf("Error creating consumer: %v", err)
	}
	defer consumer.Close()

	for {
		select {
		case <-wk.Ctx.Done():
			log.Println("ReportWorker received cancellation signal, shutting down...")
			return
		default:
			event := consumer.Poll(100)
			switch e := event.(type) {
			case *kafka.Message:
				var reportEvent handler.ReportRequestEvent
				if err := json.Unmarshal(e.Value, &reportEvent); err != nil {
					log.Printf("Error decoding report event: %v", err)
					continue
				}

				wk.buildAndSendReport(&reportEvent)
			case kafka.Error:
				log.Printf("Error: %v\n", e)
			case *kafka.AssignedPartitions:
				consumer.Assign(e.Partitions)
			case *kafka.RevokedPartitions:
				consumer.Unassign()
			}
		}
	}
}

func (wk *Worker) buildAndSendReport(event *handler.ReportRequestEvent) {
	filter := &repository.ApplicationFilter{
		Lga:    event.Lga,
		Status: event.Status,
	}

	if event.StartDate != "" {
		if parsed, err := time.Parse("2006-01-02", event.StartDate); err == nil {
			filter.StartDate = &parsed
		}
	}
	if event.EndDate != "" {
		if parsed, err := time.Parse("2006-01-02", event.EndDate); err == nil {
			parsed = parsed.Add(24*time.Hour - time.Millisecond)
			filter.EndDate = &parsed
		}
	}

	// Limit 0 disables pagination; exports are always complete
	applications, _, err := wk.DB.Application().List(filter)
	if err != nil {
		log.Printf("Error querying applications for report: %v", err)
		return
	}

	csvData, err := renderApplicationsCSV(applications)
	if err != nil {
		log.Printf("Error rendering applications CSV: %v", err)
		return
	}

	wk.Helper.BackgroundTask(nil, func() error {
		emailData := wk.Helper.NewEmailData()
		emailData["RequestedAt"] = event.RequestedAt
		emailData["Count"] = len(applications)

		attachment := &smtp.Attachment{
			Filename: "applications-report-" + time.Now().Format("2006-01-02") + ".csv",
			Data:     csvData,
		}

		err := wk.Mailer.SendWithAttachment(event.Email, emailData, attachment, "application-report.tmpl")
		if err != nil {
			log.Printf("Error sending report email: %v", err)
			return err
		}

		return nil
	})
}

func renderApplicationsCSV(applications []models.Application) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeader); err != nil {
		return nil, err
	}

	for i := range applications {
		application := &applications[i]

		row := []string{
			strconv.Itoa(i + 1),
			application.FullNames,
			orNA(application.Nin),
			nullOrNA(application.FatherNames),
			nullOrNA(application.MotherNames),
			nullOrNA(application.NativeTown),
			nullOrNA(application.NativePoliticalWard),
			nullOrNA(application.Village),
			nullOrNA(application.CommunityHead),
			nullOrNA(application.CommunityHeadContact),
			application.CurrentAddress,
			application.Lga,
			application.StateOfOrigin,
			yesNo(application.IsResident),
			nullOrNA(application.LgaOfResident),
			application.Status,
			dateOrNA(application.PendingApprovalRejectionDate),
			application.CreatedAt.UTC().Format("2006-01-02"),
			application.CreatedAt.UTC().Format("15:04:05"),
		}

		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}

func nullOrNA(value sql.NullString) string {
	if !value.Valid || value.String == "" {
		return "N/A"
	}
	return value.String
}

func yesNo(value sql.NullBool) string {
	if value.Valid && value.Bool {
		return "Yes"
	}
	return "No"
}

func dateOrNA(value sql.NullTime) string {
	if !value.Valid {
		return "N/A"
	}
	return value.Time.UTC().Format("2006-01-02")
}
