package errors

// User-friendly error messages
const (
	MsgListingNotFound    = "Listing not found. It may have been removed by its owner."
	MsgServiceUnavailable = "We're unable to retrieve listings right now. Please try again in a few minutes."
	MsgRateLimited        = "You're searching too quickly! Please wait a moment and try again."
	MsgInvalidParameters  = "The provided parameters are invalid. Please check your input and try again."
	MsgDescriptionFailed  = "We couldn't generate a description for this listing. Please try again later."
	MsgInternalError      = "Something went wrong on our end. Please try again later."
)
