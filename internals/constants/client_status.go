package constants

// Client outcome statuses, in the order the admin screens list them.
const (
	ClientStatusPending   = "PENDING"
	ClientStatusAbsent    = "ABSENT"
	ClientStatusFail      = "FAIL"
	ClientStatusSuccess1  = "SUCCESS_1"
	ClientStatusSuccess2  = "SUCCESS_2"
	ClientStatusPromising = "PROMISING"
)

var (
	ClientStatuses = []string{
		ClientStatusPending,
		ClientStatusAbsent,
		ClientStatusFail,
		ClientStatusSuccess1,
		ClientStatusSuccess2,
		ClientStatusPromising,
	}

	// counted as a contract by rankings and incentives
	SuccessStatuses = []string{ClientStatusSuccess1, ClientStatusSuccess2}
)

func IsValidClientStatus(s string) bool {
	for _, v := range ClientStatuses {
		if v == s {
			return true
		}
	}
	return false
}
