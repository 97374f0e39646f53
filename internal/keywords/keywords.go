// Package keywords holds the language-keyword dictionaries used to
// recognize the post composer and the submit control across Facebook's
// localized UIs. The built-in lists are empirically tuned and can be
// replaced wholesale from a YAML file.
package keywords

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Set is a pair of keyword lists, one per element kind. All matching is
// lower-cased substring matching, so entries must be lower case.
type Set struct {
	Composer []string `yaml:"composer"`
	Submit   []string `yaml:"submit"`
}

// defaultComposer matches composer placeholders such as "Write something..."
// across the locales Facebook is commonly served in.
var defaultComposer = []string{
	"write something", "write something...", "write a post", "write your post",
	"what's on your mind", "what are you selling",
	"escribe algo", "escribe una publicación",
	"tulis sesuatu", "tulis kiriman", "tulis postingan",
	"escreva algo", "no que você está pensando", "escreva uma publicação",
	"écrivez quelque chose", "écrire une publication",
	"schreibe etwas", "schreib etwas", "einen beitrag schreiben",
	"scrivi qualcosa", "scrivi un post",
	"bir şeyler yaz", "bir gönderi yaz",
	"напишите что-нибудь", "напишите что-то", "создать публикацию",
	"viết gì đó", "viết một bài",
	"เขียนอะไรบางอย่าง",
	"投稿を作成", "何かを書いてください",
	"무슨 생각을 하고 계신가요", "게시물 작성",
}

// defaultSubmit matches the label of the button that publishes the post.
var defaultSubmit = []string{
	"post", "publish", "share", "publier", "publicar", "postar", "enviar",
	"fertig", "kirim", "bagikan", "unggah", "posting",
	"แชร์", "แบ่งปัน", "แชร์โพสต์", "投稿", "게시", "완료", "опубликовать",
}

// Default returns the built-in dictionaries.
func Default() Set {
	return Set{
		Composer: normalize(defaultComposer),
		Submit:   normalize(defaultSubmit),
	}
}

// Load reads a keyword set from a YAML file. Lists present in the file
// replace the built-in ones; absent lists keep their defaults.
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-specified keywords file
	if err != nil {
		return Set{}, fmt.Errorf("failed to read keywords file: %w", err)
	}

	var loaded Set
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return Set{}, fmt.Errorf("failed to parse keywords file: %w", err)
	}

	set := Default()
	if len(loaded.Composer) > 0 {
		set.Composer = normalize(loaded.Composer)
	}
	if len(loaded.Submit) > 0 {
		set.Submit = normalize(loaded.Submit)
	}
	return set, nil
}

// normalize lower-cases and trims entries, dropping empties and duplicates.
func normalize(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, k := range in {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
