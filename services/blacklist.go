package services

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"jirareport/models"
)

// Blacklist はレポートから除外するイシューキーの集合です
type Blacklist map[string]struct{}

// LoadBlacklist は1行1キーのファイルを読み込みます。空行と # で始まる行は無視します
func LoadBlacklist(path string) (Blacklist, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ブラックリストオープンエラー: %w", err)
	}
	defer file.Close()

	list := make(Blacklist)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		list[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ブラックリスト読み込みエラー: %w", err)
	}
	return list, nil
}

// Filter はブラックリストにないイシューだけを元の順序で返します
func (b Blacklist) Filter(issues []models.Issue) ([]models.Issue, int) {
	if len(b) == 0 {
		return issues, 0
	}

	kept := make([]models.Issue, 0, len(issues))
	skipped := 0
	for _, issue := range issues {
		if _, ok := b[issue.Key]; ok {
			skipped++
			continue
		}
		kept = append(kept, issue)
	}
	return kept, skipped
}
