package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument  = 1000
	ErrCodeInvalidJSON      = 1001
	ErrCodeRequestTooLarge  = 1002
	ErrCodeInvalidQuery     = 1003
	ErrCodeInvalidID        = 1004
	ErrCodeInvalidName      = 1005
	ErrCodeInvalidAge       = 1006
	ErrCodeInvalidColor     = 1007
	ErrCodeMissingRequired  = 1009
	ErrCodeInvalidFilename  = 1012
	ErrCodeInvalidAgeRange  = 1013
	ErrCodeUnknownFaculty   = 1014
	ErrCodePayloadTooLarge  = 1015
	ErrCodeInvalidPage      = 1016
	ErrCodeInvalidMultipart = 1017

	// Domain state (2xxx)
	ErrCodeStudentNotFound   = 2001
	ErrCodeFacultyNotFound   = 2002
	ErrCodeAvatarNotFound    = 2003
	ErrCodeAvatarFileMissing = 2004
	ErrCodeNoFacultyAssigned = 2005
	ErrCodeConflict          = 2102

	// Internal/system (4xxx)
	ErrCodeInternal     = 4001
	ErrCodeStoreFailure = 4002
	ErrCodeIOFailure    = 4006
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 404:
		return ErrCodeStudentNotFound
	case 409:
		return ErrCodeConflict
	case 500:
		return ErrCodeInternal
	default:
		return 0
	}
}
