package tracing

// Span names.
const (
	SpanStoryLoad      = "story.load"
	SpanRouterActivate = "router.activate"
	SpanRenderIssue    = "render.issue"
	SpanThemeToggle    = "theme.toggle"
)

// Attribute keys.
const (
	AttrSessionID    = "session.id"
	AttrStoryID      = "story.id"
	AttrStoryCount   = "story.count"
	AttrLoader       = "story.loader"
	AttrIssueNumber  = "issue.number"
	AttrCommentCount = "issue.comments"
	AttrFragment     = "location.fragment"
	AttrFallback     = "router.fallback"
	AttrThemeMode    = "theme.mode"
)

// Event names.
const (
	EventFragmentRewritten = "location.rewritten"
	EventTargetMissing     = "render.target_missing"
)
