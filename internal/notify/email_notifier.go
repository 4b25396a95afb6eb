package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dekut-devs/clearance-api/internal/models"
	"github.com/dekut-devs/clearance-api/pkg/jobs"
)

const jobTypeEmail = "email"

type emailJob struct {
	To      string
	Subject string
	Body    string
}

// EmailNotifier turns clearance events into student emails. Delivery runs
// on a background queue; enqueue failures are logged and dropped so the
// clearance workflow never waits on or fails with the mail server.
type EmailNotifier struct {
	mailer Mailer
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewEmailNotifier constructs the notifier and its delivery queue. Call
// Start before use and Stop on shutdown.
func NewEmailNotifier(mailer Mailer, queueCfg jobs.QueueConfig, logger *zap.Logger) *EmailNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &EmailNotifier{mailer: mailer, logger: logger}
	n.queue = jobs.NewQueue("notifications", n.handle, queueCfg)
	return n
}

// Start begins background delivery.
func (n *EmailNotifier) Start(ctx context.Context) {
	n.queue.Start(ctx)
}

// Stop drains the delivery workers.
func (n *EmailNotifier) Stop() {
	n.queue.Stop()
}

// RequestStarted welcomes the student onto the clearance portal.
func (n *EmailNotifier) RequestStarted(request *models.ClearanceRequest) {
	n.send(request, "Clearance Process Started",
		fmt.Sprintf("Hello %s, your graduation clearance process has officially started. You can track your progress on the portal.", request.Name))
}

// DecisionRecorded tells the student about one department's verdict.
func (n *EmailNotifier) DecisionRecorded(request *models.ClearanceRequest, department string, decision models.DepartmentDecision) {
	subject := fmt.Sprintf("Clearance Update: %s", department)
	var body string
	switch decision.Status {
	case models.DecisionApproved:
		body = fmt.Sprintf("Good news! The %s department has APPROVED your clearance.", department)
	case models.DecisionRejected:
		subject = fmt.Sprintf("Action Required: %s", department)
		body = fmt.Sprintf("Your clearance for %s was REJECTED.\n\nReason: %q\n\nPlease visit the office or contact them.", department, decision.Remarks)
	default:
		body = fmt.Sprintf("Your status for %s is now %s.", department, decision.Status)
	}
	n.send(request, subject, body)
}

// FullyCleared congratulates the student once every department approves.
func (n *EmailNotifier) FullyCleared(request *models.ClearanceRequest) {
	n.send(request, "Clearance Complete!",
		"Congratulations! You are now fully cleared by all departments. You can book your graduation gown and download your clearance certificate on the portal.")
}

func (n *EmailNotifier) send(request *models.ClearanceRequest, subject, body string) {
	if request == nil || request.Email == nil || *request.Email == "" {
		return
	}
	if !request.Settings.EmailAlerts {
		return
	}
	err := n.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    jobTypeEmail,
		Payload: emailJob{To: *request.Email, Subject: subject, Body: body},
	})
	if err != nil {
		n.logger.Warn("failed to enqueue notification",
			zap.String("request_id", request.ID),
			zap.String("subject", subject),
			zap.Error(err))
	}
}

func (n *EmailNotifier) handle(_ context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(emailJob)
	if !ok {
		n.logger.Error("unexpected notification payload", zap.String("job_id", job.ID))
		return nil
	}
	return n.mailer.Send(payload.To, payload.Subject, payload.Body)
}
