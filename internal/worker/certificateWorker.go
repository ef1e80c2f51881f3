package worker

import (
	"encoding/json"
	"log"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/cradoe/indigene/internal/handler"
	"github.com/cradoe/indigene/internal/stream"
)

// VerificationCodeWorker emails freshly minted verification codes to
// certificate holders.
func (wk *Worker) VerificationCodeWorker() {
	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: certificateVerificationGroupID,
		Topic:   stream.CertificateVerificationTopic,
	})

	if err != nil {
		log.Fatalf("Error creating consumer: %v", err)
	}
	defer consumer.Close()

	for {
		select {
		case <-wk.Ctx.Done():
			log.Println("VerificationCodeWorker received cancellation signal, shutting down...")
			return
		default:
			event := consumer.Poll(100)
			switch e := event.(type) {
			case *kafka.Message:
				var verificationEvent handler.CertificateVerificationEvent
				if err := json.Unmarshal(e.Value, &verificationEvent); err != nil {
					log.Printf("Error decoding verification-code event: %v", err)
					continue
				}

				wk.Helper.BackgroundTask(nil, func() error {
					emailData := wk.Helper.NewEmailData()
					emailData["Name"] = verificationEvent.FullNames
					emailData["VerificationCode"] = verificationEvent.VerificationCode
					emailData["Amount"] = verificationEvent.Amount

					err := wk.Mailer.Send(verificationEvent.Email, emailData, "certificate-verification-code.tmpl")
					if err != nil {
						log.Printf("Error sending verification-code email: %v", err)
						return err
					}

					return nil
				})
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
