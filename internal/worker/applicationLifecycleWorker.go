// Application lifecycle notifications. Each consumer listens on one
// topic and sends one templated email to the applicant. The events
// already carry everything the templates need, so a consumer never has
// to reach back into the handlers' request state.
package worker

import (
	"encoding/json"
	"log"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/cradoe/indigene/internal/handler"
	"github.com/cradoe/indigene/internal/stream"
)

func (wk *Worker) AwaitingApprovalWorker() {
	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: applicationAwaitingApprovalGroupID,
		Topic:   stream.ApplicationAwaitingApprovalTopic,
	})

	if err != nil {
		log.Fatalf("Error creating consumer: %v", err)
	}
	defer consumer.Close()

	for {
		select {
		case <-wk.Ctx.Done():
			log.Println("AwaitingApprovalWorker received cancellation signal, shutting down...")
			return
		default:
			event := consumer.Poll(100)
			switch e := event.(type) {
			case *kafka.Message:
				var lifecycleEvent handler.ApplicationLifecycleEvent
				if err := json.Unmarshal(e.Value, &lifecycleEvent); err != nil {
					log.Printf("Error decoding awaiting-approval event: %v", err)
					continue
				}

				wk.sendAwaitingApprovalMail(&lifecycleEvent)
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

func (wk *Worker) sendAwaitingApprovalMail(event *handler.ApplicationLifecycleEvent) {
	wk.Helper.BackgroundTask(nil, func() error {
		emailData := wk.Helper.NewEmailData()
		emailData["Name"] = event.FullNames
		emailData["Lga"] = event.Lga
		emailData["Amount"] = event.Amount

		err := wk.Mailer.Send(event.Email, emailData, "application-awaiting-approval.tmpl")
		if err != nil {
			log.Printf("Error sending awaiting-approval email: %v", err)
			return err
		}

		return nil
	})
}

func (wk *Worker) ApprovedApplicationWorker() {
	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: applicationApprovedGroupID,
		Topic:   stream.ApplicationApprovedTopic,
	})

	if err != nil {
		log.Fatalf("Error creating consumer: %v", err)
	}
	defer consumer.Close()

	for {
		select {
		case <-wk.Ctx.Done():
			log.Println("ApprovedApplicationWorker received cancellation signal, shutting down...")
			return
		default:
			event := consumer.Poll(100)
			switch e := event.(type) {
			case *kafka.Message:
				var lifecycleEvent handler.ApplicationLifecycleEvent
				if err := json.Unmarshal(e.Value, &lifecycleEvent); err != nil {
					log.Printf("Error decoding approved event: %v", err)
					continue
				}

				wk.sendDecisionMail(&lifecycleEvent, "application-approved.tmpl")
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

func (wk *Worker) RejectedApplicationWorker() {
	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: applicationRejectedGroupID,
		Topic:   stream.ApplicationRejectedTopic,
	})

	if err != nil {
		log.Fatalf("Error creating consumer: %v", err)
	}
	defer consumer.Close()

	for {
		select {
		case <-wk.Ctx.Done():
			log.Println("RejectedApplicationWorker received cancellation signal, shutting down...")
			return
		default:
			event := consumer.Poll(100)
			switch e := event.(type) {
			case *kafka.Message:
				var lifecycleEvent handler.ApplicationLifecycleEvent
				if err := json.Unmarshal(e.Value, &lifecycleEvent); err != nil {
					log.Printf("Error decoding rejected event: %v", err)
					continue
				}

				wk.sendDecisionMail(&lifecycleEvent, "application-rejected.tmpl")
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

func (wk *Worker) sendDecisionMail(event *handler.ApplicationLifecycleEvent, template string) {
	wk.Helper.BackgroundTask(nil, func() error {
		emailData := wk.Helper.NewEmailData()
		emailData["Name"] = event.FullNames
		emailData["Lga"] = event.Lga
		emailData["CertificateRef"] = event.CertificateRef
		emailData["DecisionDate"] = event.DecisionDate

		err := wk.Mailer.Send(event.Email, emailData, template)
		if err != nil {
			log.Printf("Error sending decision email: %v", err)
			return err
		}

		return nil
	})
}
