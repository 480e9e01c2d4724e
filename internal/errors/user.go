package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to their user-facing messages.
// Using a slice (not a map) because errors.Is() requires proper error chain traversal.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// Scenario authoring
	// ===================
	{
		err: ErrInvalidPhase,
		info: ErrorInfo{
			Message: "A scenario called a lifecycle operation out of order.",
			Action:  "Check that every begin call is matched by its end call before moving on.",
		},
	},
	{
		err: ErrUnknownTestCase,
		info: ErrorInfo{
			Message: "A scenario began a test case that is not in its documentation.",
			Action:  "Add the case to the scenario documentation or fix the case name.",
		},
	},
	{
		err: ErrDuplicateTestCase,
		info: ErrorInfo{
			Message: "A scenario ran the same test case twice.",
			Action:  "Give each test case a distinct documented name.",
		},
	},
	{
		err: ErrUnknownTestStep,
		info: ErrorInfo{
			Message: "A scenario began a test step that is not documented in the current case.",
			Action:  "Add the step to the case documentation or fix the step name.",
		},
	},
	{
		err: ErrUnknownCheck,
		info: ErrorInfo{
			Message: "A scenario performed a check that is not documented in the current step.",
			Action:  "Add the check to the step documentation or fix the check name.",
		},
	},
	{
		err: ErrMissingSeverity,
		info: ErrorInfo{
			Message: "A check failed but its documentation does not declare a severity.",
			Action:  "Declare Low, Medium, High or Critical severity for the check.",
		},
	},
	{
		err: ErrCleanupNotDocumented,
		info: ErrorInfo{
			Message: "A scenario began cleanup without a documented cleanup step.",
		},
	},
	{
		err: ErrCleanupDocumented,
		info: ErrorInfo{
			Message: "A scenario skipped a documented cleanup step.",
		},
	},
	{
		err: ErrCheckAlreadyRecorded,
		info: ErrorInfo{
			Message: "A check outcome was recorded more than once.",
		},
	},

	// ===================
	// Run control
	// ===================
	{
		err: ErrScenarioCannotContinue,
		info: ErrorInfo{
			Message: "A high severity check failed; the scenario was stopped.",
		},
	},
	{
		err: ErrTestRunCannotContinue,
		info: ErrorInfo{
			Message: "A critical check failed; the test run was stopped.",
			Action:  "Review the failed check in the report. Disable stop_fast to let non-critical failures continue.",
		},
	},

	// ===================
	// Documentation & configuration
	// ===================
	{
		err: ErrInvalidDocumentation,
		info: ErrorInfo{
			Message: "Scenario documentation is invalid.",
			Action:  "Run 'conform docs validate <file>' for details.",
		},
	},
	{
		err: ErrInvalidReportFormat,
		info: ErrorInfo{
			Message: "Unsupported report format.",
			Action:  "Use 'json' or 'yaml'.",
		},
	},
	{
		err: ErrReportUnsuccessful,
		info: ErrorInfo{
			Message: "The report contains failed checks or an execution error.",
			Action:  "Run 'conform report show <file>' without --fail to see the details.",
		},
	},
	{
		err: ErrValueOutOfRange,
		info: ErrorInfo{
			Message: "A configuration value is out of range.",
			Action:  "Check .conform/config.yaml and CONFORM_* environment variables.",
		},
	},
}

// errorInfoMap provides O(1) lookup for direct sentinel error matches.
//
//nolint:gochecknoglobals // Pre-built mapping for O(1) lookup performance
var errorInfoMap = buildErrorInfoMap()

func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo looks up the ErrorInfo for a given error, falling back to
// errors.Is() traversal for wrapped errors and to the raw message otherwise.
func getErrorInfo(err error) ErrorInfo {
	if info, ok := errorInfoMap[err]; ok {
		return info
	}
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}
	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take. The action is empty when there is none.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
