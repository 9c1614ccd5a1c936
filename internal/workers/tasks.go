// internal/workers/tasks.go
package workers

// Task type names for asynq routing
const (
	TypeBookImport       = "books:import"
	TypeSendEmail        = "email:send"
	TypeOverdueScan      = "borrows:overdue_scan"
	TypePaymentExpiry    = "payments:expire_pending"
	TypeCleanupOldData   = "cleanup:old_data"
	TypeCleanupTempFiles = "cleanup:temp_files"
)

// EmailPayload is the payload of a TypeSendEmail task
type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// BookImportPayload is the payload of a TypeBookImport task
type BookImportPayload struct {
	JobID    string `json:"job_id"`
	FilePath string `json:"file_path"`
}
