package gateway

import (
	"fmt"
	"regexp"
	"strings"
)

// Os provedores aceitam nomes de função com no máximo 64 caracteres
// em [A-Za-z0-9_-], começando por letra ou sublinhado.
const maxAliasLen = 64

var invalidAliasChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Aliases mapeia nomes remotos para nomes aceitos pelos provedores, e volta
type Aliases struct {
	toAlias  map[string]string
	toRemote map[string]string
}

// NewAliases gera apelidos estáveis para a lista de nomes, na ordem dada
func NewAliases(names []string) *Aliases {
	a := &Aliases{
		toAlias:  make(map[string]string, len(names)),
		toRemote: make(map[string]string, len(names)),
	}
	for _, name := range names {
		if _, ok := a.toAlias[name]; ok {
			continue
		}
		base := sanitize(name)
		alias := base
		for i := 2; ; i++ {
			if _, taken := a.toRemote[alias]; !taken {
				break
			}
			suffix := fmt.Sprintf("_%d", i)
			alias = truncate(base, maxAliasLen-len(suffix)) + suffix
		}
		a.toAlias[name] = alias
		a.toRemote[alias] = name
	}
	return a
}

// Alias retorna o apelido do nome remoto
func (a *Aliases) Alias(remote string) (string, bool) {
	alias, ok := a.toAlias[remote]
	return alias, ok
}

// Remote resolve o apelido para o nome remoto
func (a *Aliases) Remote(alias string) (string, bool) {
	remote, ok := a.toRemote[alias]
	return remote, ok
}

func sanitize(name string) string {
	s := invalidAliasChars.ReplaceAllString(name, "_")
	s = strings.Trim(s, "_-")
	if s == "" {
		s = "tool"
	}
	if c := s[0]; !(c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')) {
		s = "_" + s
	}
	return truncate(s, maxAliasLen)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
