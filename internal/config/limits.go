package config

const (
	// MaxTitleLength bounds document, note, audio and manual todo titles.
	MaxTitleLength = 255

	// MaxFolderNameLength is the maximum length of one folder name (one path segment).
	MaxFolderNameLength = 255

	// MaxFolderPathLength bounds "a/b/c" style folder paths as a whole.
	MaxFolderPathLength = 500

	// MaxExtractedTodoTitleLength is the hard limit for model-extracted todo titles.
	// Longer candidates are dropped, not truncated.
	MaxExtractedTodoTitleLength = 100

	// MaxDetectionTextLength limits the text sent for todo detection.
	MaxDetectionTextLength = 50000

	// MaxClassificationContentLength is how much of a document the classifier sees.
	MaxClassificationContentLength = 8000

	// MaxChatMessageLength bounds a single user chat message.
	MaxChatMessageLength = 4000

	// ChatHistoryLimit is how many previous messages are replayed to the model.
	ChatHistoryLimit = 20

	// ChatContextItemLimit caps items per kind listed in the chat context.
	ChatContextItemLimit = 25

	// MaxUploadSize is the largest accepted multipart upload (50MB).
	MaxUploadSize = 50 << 20

	// DefaultNotificationLimit and MaxNotificationLimit bound notification listings.
	DefaultNotificationLimit = 50
	MaxNotificationLimit     = 200

	// DefaultSearchLimit and MaxSearchLimit bound search results per kind.
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)
