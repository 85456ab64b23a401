package booking

const (
	operationCreateRoom           = "create_room"
	operationUpdateRoom           = "update_room"
	operationSetRoom              = "set_room"
	operationCreateAccount        = "create_account"
	operationUpdateAccountBalance = "update_account_balance"
	operationBook                 = "book"
	operationRebook               = "rebook"

	operationStatusOK    = "ok"
	operationStatusError = "error"

	errorOperationService = "service"
	errorSubjectCost      = "cost"
	errorCodeOverflow     = "overflow"

	isoDateLayout      = "2006-01-02"
	dayFirstDateLayout = "02/01/2006"
	secondsPerDay      = 24 * 60 * 60
	legacySuiteSuffix  = "_SUITE"
)
