package handler

import "net/http"

// Handlers groups every handler the router needs. Nil handlers skip their routes.
type Handlers struct {
	Health        *HealthHandler
	Folders       *FolderHandler
	Documents     *DocumentHandler
	Notes         *NoteHandler
	Audio         *AudioHandler
	Uploads       *UploadHandler
	Todos         *TodoHandler
	Notifications *NotificationHandler
	Organize      *OrganizeHandler
	Chat          *ChatHandler
	Search        *SearchHandler
	Preferences   *UserPreferencesHandler
}

// RegisterRoutes wires all routes onto mux (Go 1.22+ patterns).
// Literal segments like /tree and /upload win over {id} wildcards.
func RegisterRoutes(mux *http.ServeMux, h *Handlers) {
	if h.Health != nil {
		mux.HandleFunc("GET /health", h.Health.HealthCheck)
	}

	// Folder routes
	mux.HandleFunc("GET /api/folders", h.Folders.ListFolders)
	mux.HandleFunc("POST /api/folders", h.Folders.CreateFolder)
	mux.HandleFunc("GET /api/folders/tree", h.Folders.GetTree)
	mux.HandleFunc("GET /api/folders/{id}", h.Folders.GetFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", h.Folders.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", h.Folders.DeleteFolder)

	// Document routes
	mux.HandleFunc("GET /api/documents", h.Documents.ListDocuments)
	mux.HandleFunc("POST /api/documents", h.Documents.CreateDocument)
	mux.HandleFunc("GET /api/documents/{id}", h.Documents.GetDocument)
	mux.HandleFunc("PATCH /api/documents/{id}", h.Documents.UpdateDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", h.Documents.DeleteDocument)

	// Note routes
	mux.HandleFunc("GET /api/notes", h.Notes.ListNotes)
	mux.HandleFunc("POST /api/notes", h.Notes.CreateNote)
	mux.HandleFunc("GET /api/notes/{id}", h.Notes.GetNote)
	mux.HandleFunc("PATCH /api/notes/{id}", h.Notes.UpdateNote)
	mux.HandleFunc("DELETE /api/notes/{id}", h.Notes.DeleteNote)

	// Audio routes
	mux.HandleFunc("GET /api/audio", h.Audio.ListAudio)
	mux.HandleFunc("POST /api/audio", h.Audio.CreateAudio)
	mux.HandleFunc("GET /api/audio/{id}", h.Audio.GetAudio)
	mux.HandleFunc("PATCH /api/audio/{id}", h.Audio.UpdateAudio)
	mux.HandleFunc("DELETE /api/audio/{id}", h.Audio.DeleteAudio)

	if h.Uploads != nil {
		mux.HandleFunc("POST /api/documents/upload", h.Uploads.UploadDocument)
		mux.HandleFunc("POST /api/audio/upload", h.Uploads.UploadAudio)
	}

	// Todo routes
	mux.HandleFunc("GET /api/todos", h.Todos.ListTodos)
	mux.HandleFunc("POST /api/todos", h.Todos.CreateTodo)
	mux.HandleFunc("POST /api/todos/extract", h.Todos.ExtractTodos)
	mux.HandleFunc("GET /api/todos/{id}", h.Todos.GetTodo)
	mux.HandleFunc("PATCH /api/todos/{id}", h.Todos.UpdateTodo)
	mux.HandleFunc("DELETE /api/todos/{id}", h.Todos.DeleteTodo)
	mux.HandleFunc("POST /api/documents/{id}/todos", h.Todos.DetectFromDocument)
	mux.HandleFunc("POST /api/notes/{id}/todos", h.Todos.DetectFromNote)
	mux.HandleFunc("POST /api/audio/{id}/todos", h.Todos.DetectFromAudio)

	// Notification routes
	mux.HandleFunc("GET /api/notifications", h.Notifications.ListNotifications)
	mux.HandleFunc("GET /api/notifications/unread-count", h.Notifications.UnreadCount)
	mux.HandleFunc("GET /api/notifications/stream", h.Notifications.Stream)
	mux.HandleFunc("POST /api/notifications/read-all", h.Notifications.MarkAllRead)
	mux.HandleFunc("POST /api/notifications/{id}/read", h.Notifications.MarkRead)
	mux.HandleFunc("POST /api/notifications/{id}/unread", h.Notifications.MarkUnread)
	mux.HandleFunc("POST /api/todos/deadline-check", h.Notifications.DeadlineCheck)

	// Assistant routes
	mux.HandleFunc("POST /api/documents/{id}/classify", h.Organize.Classify)
	mux.HandleFunc("POST /api/documents/{id}/organize", h.Organize.Organize)
	mux.HandleFunc("GET /api/chat/messages", h.Chat.ListMessages)
	mux.HandleFunc("POST /api/chat/messages", h.Chat.SendMessage)
	mux.HandleFunc("DELETE /api/chat/messages", h.Chat.ClearHistory)

	mux.HandleFunc("GET /api/search", h.Search.Search)

	// User preferences routes
	mux.HandleFunc("GET /api/users/me/preferences", h.Preferences.GetPreferences)
	mux.HandleFunc("PATCH /api/users/me/preferences", h.Preferences.UpdatePreferences)
}
