// Package locale holds the operator-facing message bundles (zh-CN, en-US).
package locale

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	KeyHistoryTitle   = "history.title"
	KeyHistoryEmpty   = "history.empty"
	KeyRollbackLast   = "rollback.last"
	KeyRollbackHere   = "rollback.here"
	KeyCanRollback    = "status.can_rollback"
	KeyCannotRollback = "status.cannot_rollback"
	KeyActive         = "status.active"
	KeyUndone         = "status.undone"
	KeyCurrentValues  = "values.title"
	KeySiteName       = "values.site_name"
	KeyEmailNotify    = "values.email_notifications"
	KeyDarkMode       = "values.dark_mode"
	KeyOn             = "values.on"
	KeyOff            = "values.off"
	KeySessions       = "sessions.title"
	KeyNoSessions     = "sessions.empty"
	KeySessionHeader  = "trace.session"
	KeyOpCheckpoint   = "trace.checkpoint"
	KeyOpRollback     = "trace.rollback"
	KeyApplied        = "trace.applied"
	KeyIgnored        = "trace.ignored"
	KeyTraceSummary   = "trace.summary"
)

// Default is the console's initial locale.
var Default = language.MustParse("zh-CN")

// Supported lists the bundled locales, default first.
var Supported = []language.Tag{
	Default,
	language.MustParse("en-US"),
}

var bundles = map[language.Tag]map[string]string{
	Supported[0]: {
		KeyHistoryTitle:   "检查点历史",
		KeyHistoryEmpty:   "暂无检查点",
		KeyRollbackLast:   "回滚到上一个检查点",
		KeyRollbackHere:   "回滚到此处",
		KeyCanRollback:    "可回滚",
		KeyCannotRollback: "不可回滚",
		KeyActive:         "当前",
		KeyUndone:         "已撤销",
		KeyCurrentValues:  "当前设置",
		KeySiteName:       "站点名称",
		KeyEmailNotify:    "邮件通知",
		KeyDarkMode:       "深色模式",
		KeyOn:             "开",
		KeyOff:            "关",
		KeySessions:       "会话",
		KeyNoSessions:     "暂无会话",
		KeySessionHeader:  "会话 %s（开始 %s，结束 %s）",
		KeyOpCheckpoint:   "检查点",
		KeyOpRollback:     "回滚",
		KeyApplied:        "已生效",
		KeyIgnored:        "已忽略",
		KeyTraceSummary:   "%d 个检查点，%d 次回滚（%d 次忽略），游标 %d",
	},
	Supported[1]: {
		KeyHistoryTitle:   "Checkpoint history",
		KeyHistoryEmpty:   "No checkpoints yet",
		KeyRollbackLast:   "Roll back to previous checkpoint",
		KeyRollbackHere:   "Roll back to here",
		KeyCanRollback:    "rollback available",
		KeyCannotRollback: "nothing to roll back",
		KeyActive:         "active",
		KeyUndone:         "undone",
		KeyCurrentValues:  "Current settings",
		KeySiteName:       "Site name",
		KeyEmailNotify:    "Email notifications",
		KeyDarkMode:       "Dark mode",
		KeyOn:             "on",
		KeyOff:            "off",
		KeySessions:       "Sessions",
		KeyNoSessions:     "No sessions recorded",
		KeySessionHeader:  "Session %s (started %s, ended %s)",
		KeyOpCheckpoint:   "checkpoint",
		KeyOpRollback:     "rollback",
		KeyApplied:        "applied",
		KeyIgnored:        "ignored",
		KeyTraceSummary:   "%d checkpoint(s), %d rollback(s) (%d ignored), cursor %d",
	},
}

var (
	matcher = language.NewMatcher(Supported)
	cat     = mustBuildCatalog()
)

func mustBuildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(Default))
	for tag, msgs := range bundles {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(fmt.Sprintf("locale: %s %s: %v", tag, key, err))
			}
		}
	}
	return b
}

// Match returns the supported locale closest to the requested one.
// Empty or unparsable input yields Default.
func Match(requested string) language.Tag {
	if requested == "" {
		return Default
	}
	tag, err := language.Parse(requested)
	if err != nil {
		return Default
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return Default
	}
	return Supported[idx]
}

// Printer renders messages for one locale.
type Printer struct {
	tag language.Tag
	p   *message.Printer
}

// NewPrinter returns a printer for tag, which should come from Match.
func NewPrinter(tag language.Tag) *Printer {
	return &Printer{
		tag: tag,
		p:   message.NewPrinter(tag, message.Catalog(cat)),
	}
}

// Tag returns the printer's locale.
func (p *Printer) Tag() language.Tag { return p.tag }

// T returns the message for key.
func (p *Printer) T(key string) string {
	return p.p.Sprintf(key)
}

// F formats the message for key with args.
func (p *Printer) F(key string, args ...any) string {
	return p.p.Sprintf(key, args...)
}

// Bool renders an on/off switch value.
func (p *Printer) Bool(b bool) string {
	if b {
		return p.T(KeyOn)
	}
	return p.T(KeyOff)
}
