package domain

type AuditState string

const (
	AuditStored   AuditState = "STORED"
	AuditQueued   AuditState = "QUEUED"
	AuditApproved AuditState = "APPROVED"
	AuditRejected AuditState = "REJECTED"
	AuditProgress AuditState = "PROGRESS"
)

const (
	ReviewQueuePending  = "PENDING"
	ReviewQueueApproved = "APPROVED"
	ReviewQueueRejected = "REJECTED"
)

func AuditStateFor(status DocumentStatus) AuditState {
	if status == DocumentRejected {
		return AuditRejected
	}
	return AuditApproved
}

func ReviewQueueStateFor(status DocumentStatus) string {
	if status == DocumentRejected {
		return ReviewQueueRejected
	}
	return ReviewQueueApproved
}
