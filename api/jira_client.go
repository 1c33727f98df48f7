package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jirareport/config"
	"jirareport/models"
	"jirareport/utils"
)

// 検索で取得するフィールド
const searchFields = "summary,status,project,created"

// jqlDate はJQLで使う日付フォーマットです
const jqlDate = "2006/01/02"

// JiraClient はJIRA APIとのやり取りを処理します
type JiraClient struct {
	config   *config.Config
	client   *http.Client
	pageSize int
}

// NewJiraClient は新しいJIRAクライアントを作成します
func NewJiraClient(cfg *config.Config, pageSize int) *JiraClient {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &JiraClient{
		config:   cfg,
		client:   &http.Client{},
		pageSize: pageSize,
	}
}

// Jira検索APIのレスポンス
type searchResponse struct {
	StartAt    int `json:"startAt"`
	MaxResults int `json:"maxResults"`
	Total      int `json:"total"`
	Issues     []struct {
		ID     string `json:"id"`
		Key    string `json:"key"`
		Fields struct {
			Summary string `json:"summary"`
			Status  struct {
				Name string `json:"name"`
			} `json:"status"`
			Project struct {
				Key  string `json:"key"`
				Name string `json:"name"`
			} `json:"project"`
			Created string `json:"created"`
		} `json:"fields"`
	} `json:"issues"`
}

type myselfResponse struct {
	Name         string `json:"name"`
	EmailAddress string `json:"emailAddress"`
	DisplayName  string `json:"displayName"`
}

// CheckAuth はJIRA認証をチェックし、認証ユーザーの表示名を返します
func (j *JiraClient) CheckAuth(ctx context.Context) (string, error) {
	u := fmt.Sprintf("%s/rest/api/2/myself", j.config.JiraURL)

	body, err := j.get(ctx, u)
	if err != nil {
		return "", err
	}

	var me myselfResponse
	if err := json.Unmarshal(body, &me); err != nil {
		return "", fmt.Errorf("レスポンス解析エラー: %w", err)
	}

	if me.DisplayName != "" {
		return me.DisplayName, nil
	}
	return j.config.JiraUsername, nil
}

// FetchAssigned は対象月に設定ユーザーへアサインされていたイシューを取得します
// 結果はAPIが返した順序のままです
func (j *JiraClient) FetchAssigned(ctx context.Context, rng models.DateRange) ([]models.Issue, error) {
	jql := BuildJQL(j.config.JiraUsername, rng)
	utils.LogInfo("JIRAを検索しています: %s", jql)

	var issues []models.Issue
	startAt := 0

	for {
		page, err := j.search(ctx, jql, startAt)
		if err != nil {
			return nil, err
		}

		for _, raw := range page.Issues {
			issue := models.Issue{
				ID:      raw.ID,
				Key:     raw.Key,
				Summary: raw.Fields.Summary,
				Status:  raw.Fields.Status.Name,
				Project: raw.Fields.Project.Name,
				URL:     fmt.Sprintf("%s/browse/%s", j.config.JiraURL, raw.Key),
			}
			if created, err := parseJiraTime(raw.Fields.Created); err == nil {
				issue.Created = created
			} else if raw.Fields.Created != "" {
				utils.LogWarn("作成日時の解析に失敗しました: %s %q", raw.Key, raw.Fields.Created)
			}
			issues = append(issues, issue)
		}

		startAt += len(page.Issues)
		if len(page.Issues) == 0 || startAt >= page.Total {
			break
		}
	}

	return issues, nil
}

// BuildJQL は担当者と対象月で絞り込むJQLを組み立てます
// updated の上限は翌月1日（含まない）
func BuildJQL(username string, rng models.DateRange) string {
	start := rng.Start().Format(jqlDate)
	end := rng.End().Format(jqlDate)
	next := rng.End().AddDate(0, 0, 1).Format(jqlDate)
	return fmt.Sprintf(`assignee was %s DURING ("%s", "%s") AND updated >= "%s" AND updated < "%s" ORDER BY created ASC`,
		strconv.Quote(username), start, end, start, next)
}

// 検索APIを1ページ分呼び出す
func (j *JiraClient) search(ctx context.Context, jql string, startAt int) (*searchResponse, error) {
	q := url.Values{}
	q.Set("jql", jql)
	q.Set("startAt", strconv.Itoa(startAt))
	q.Set("maxResults", strconv.Itoa(j.pageSize))
	q.Set("fields", searchFields)

	u := fmt.Sprintf("%s/rest/api/2/search?%s", j.config.JiraURL, q.Encode())

	body, err := j.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var page searchResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("レスポンス解析エラー: %w", err)
	}
	return &page, nil
}

// 認証付きGETリクエストを送信してボディを返す
func (j *JiraClient) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエスト作成エラー: %w", err)
	}

	req.SetBasicAuth(j.config.JiraUsername, j.config.JiraAPIToken)
	req.Header.Set("Accept", "application/json")

	resp, err := j.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: レスポンス読み込みエラー: %w", models.ErrNetwork, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status=%d", models.ErrAuth, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("JIRA APIエラー: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}

// JIRAの日時は "2019-10-02T09:15:00.000+0200" 形式
func parseJiraTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05.000-0700",
		time.RFC3339Nano,
	}
	var lastErr error
	for _, format := range formats {
		t, err := time.Parse(format, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
