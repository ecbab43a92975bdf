package model_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/ghrepo/internal/domain/model"
)

const minimalRepoJSON = `{
	"id": 1,
	"name": "x",
	"full_name": "o/x",
	"owner": {"login": "o", "id": 7},
	"private": false,
	"fork": false
}`

const parentRepoJSON = `{
	"id": 1296269,
	"name": "Hello-World",
	"full_name": "octocat/Hello-World",
	"description": "This your first repo!",
	"owner": {"login": "octocat", "id": 1, "type": "User"},
	"private": false,
	"fork": false,
	"homepage": "https://github.com",
	"language": "Go",
	"default_branch": "master",
	"size": 108,
	"forks_count": 9,
	"stargazers_count": 80,
	"watchers_count": 80,
	"open_issues_count": 0,
	"has_issues": true,
	"has_wiki": true,
	"has_pages": false,
	"has_downloads": true,
	"created_at": "2011-01-26T19:01:12Z",
	"updated_at": "2011-01-26T19:14:43Z",
	"pushed_at": "2011-01-26T19:06:43Z"
}`

// forkRepoJSON embeds parentRepoJSON as its parent.
var forkRepoJSON = `{
	"id": 2000,
	"name": "Hello-World",
	"full_name": "alice/Hello-World",
	"description": null,
	"owner": {"login": "alice", "id": 42},
	"private": true,
	"fork": true,
	"homepage": null,
	"language": null,
	"default_branch": "main",
	"html_url": "https://github.com/alice/Hello-World",
	"clone_url": "https://github.com/alice/Hello-World.git",
	"ssh_url": "git@github.com:alice/Hello-World.git",
	"parent": ` + parentRepoJSON + `,
	"forks_count": 0,
	"stargazers_count": 1,
	"watchers_count": 1,
	"open_issues_count": 2,
	"has_issues": false,
	"has_wiki": false,
	"has_pages": false,
	"has_downloads": true,
	"created_at": "2026-01-01T00:00:00Z",
	"updated_at": "2026-01-02T00:00:00Z",
	"pushed_at": "2026-01-03T00:00:00Z",
	"network_count": 9,
	"topics": ["octocat"]
}`

func decodeRepo(t *testing.T, payload string) model.Repository {
	t.Helper()

	var repo model.Repository
	require.NoError(t, json.Unmarshal([]byte(payload), &repo))
	return repo
}

func TestRepository_DecodeBasicOnly(t *testing.T) {
	repo := decodeRepo(t, minimalRepoJSON)

	assert.Equal(t, int64(1), repo.Basic.ID)
	assert.Equal(t, "x", repo.Basic.Name)
	assert.Equal(t, "o/x", repo.Basic.FullName)
	assert.Nil(t, repo.Basic.Description)
	assert.Equal(t, "o", repo.Basic.Owner.Login)
	assert.Equal(t, int64(7), repo.Basic.Owner.ID)
	assert.False(t, repo.Basic.IsPrivate)
	assert.False(t, repo.Basic.IsFork)

	assert.Nil(t, repo.Detail, "summary payload must not produce a Detail")
	assert.Nil(t, repo.ForkedFrom())
	assert.Nil(t, repo.Clone())
}

func TestRepository_DecodeDetail(t *testing.T) {
	repo := decodeRepo(t, parentRepoJSON)

	require.NotNil(t, repo.Basic.Description)
	assert.Equal(t, "This your first repo!", *repo.Basic.Description)

	require.NotNil(t, repo.Detail)
	d := repo.Detail
	require.NotNil(t, d.Homepage)
	assert.Equal(t, "https://github.com", *d.Homepage)
	require.NotNil(t, d.Language)
	assert.Equal(t, "Go", *d.Language)
	require.NotNil(t, d.DefaultBranch)
	assert.Equal(t, "master", *d.DefaultBranch)
	require.NotNil(t, d.Size)
	assert.Equal(t, 108, *d.Size)
	assert.Equal(t, 9, d.ForksCount)
	assert.Equal(t, 80, d.StarsCount)
	assert.Equal(t, 80, d.WatchersCount)
	assert.Equal(t, 0, d.OpenIssuesCount)
	assert.True(t, d.HasIssues)
	assert.True(t, d.HasWiki)
	assert.False(t, d.HasPages)
	assert.True(t, d.HasDownloads)
	assert.Equal(t, time.Date(2011, 1, 26, 19, 1, 12, 0, time.UTC), d.Created.UTC())
	assert.Equal(t, time.Date(2011, 1, 26, 19, 14, 43, 0, time.UTC), d.Updated.UTC())
	assert.Equal(t, time.Date(2011, 1, 26, 19, 6, 43, 0, time.UTC), d.Pushed.UTC())
	assert.Nil(t, d.ForkedFrom())
}

func TestRepository_ForkedFromMatchesDirectDecode(t *testing.T) {
	fork := decodeRepo(t, forkRepoJSON)
	parent := decodeRepo(t, parentRepoJSON)

	require.NotNil(t, fork.Detail)
	require.NotNil(t, fork.ForkedFrom())
	assert.Equal(t, parent, *fork.ForkedFrom())
	assert.Equal(t, "octocat/Hello-World", fork.ForkedFrom().Basic.FullName)

	// Explicit nulls on optional fields leave them unset.
	assert.Nil(t, fork.Basic.Description)
	assert.Nil(t, fork.Detail.Homepage)
	assert.Nil(t, fork.Detail.Language)
	assert.Nil(t, fork.Detail.Size)
}

func TestRepository_RoundTrip(t *testing.T) {
	for name, payload := range map[string]string{
		"minimal": minimalRepoJSON,
		"detail":  parentRepoJSON,
		"fork":    forkRepoJSON,
	} {
		t.Run(name, func(t *testing.T) {
			original := decodeRepo(t, payload)

			encoded, err := json.Marshal(original)
			require.NoError(t, err)

			var decoded model.Repository
			require.NoError(t, json.Unmarshal(encoded, &decoded))
			assert.Equal(t, original, decoded)
		})
	}
}

func TestRepository_EncodeUsesWireKeys(t *testing.T) {
	repo := decodeRepo(t, forkRepoJSON)

	encoded, err := json.Marshal(repo)
	require.NoError(t, err)

	var obj map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(encoded, &obj))

	for _, key := range []string{"full_name", "private", "fork", "default_branch", "forks_count",
		"stargazers_count", "watchers_count", "open_issues_count", "has_issues", "has_wiki",
		"has_pages", "has_downloads", "created_at", "updated_at", "pushed_at", "parent"} {
		assert.Contains(t, obj, key)
	}
	assert.NotContains(t, obj, "description", "nil optional fields are omitted")
	assert.NotContains(t, obj, "network_count", "unknown fields are not carried")
}

func TestRepository_MissingRequiredBasicField(t *testing.T) {
	for _, key := range []string{"id", "name", "full_name", "owner", "private", "fork"} {
		t.Run(key, func(t *testing.T) {
			var obj map[string]any
			require.NoError(t, json.Unmarshal([]byte(minimalRepoJSON), &obj))
			delete(obj, key)
			payload, err := json.Marshal(obj)
			require.NoError(t, err)

			var repo model.Repository
			err = json.Unmarshal(payload, &repo)

			var de *model.DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, key, de.Path)
			assert.ErrorIs(t, err, model.ErrMissingField)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestRepository_NullRequiredField(t *testing.T) {
	payload := `{"id":null,"name":"x","full_name":"o/x","owner":{"login":"o","id":7},"private":false,"fork":false}`

	var repo model.Repository
	err := json.Unmarshal([]byte(payload), &repo)

	var de *model.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "id", de.Path)
	assert.ErrorIs(t, err, model.ErrMissingField)
}

func TestRepository_TypeMismatch(t *testing.T) {
	payload := `{"id":"one","name":"x","full_name":"o/x","owner":{"login":"o","id":7},"private":false,"fork":false}`

	var repo model.Repository
	err := json.Unmarshal([]byte(payload), &repo)

	var de *model.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "id", de.Path)
	assert.NotErrorIs(t, err, model.ErrMissingField)

	var typeErr *json.UnmarshalTypeError
	assert.True(t, errors.As(err, &typeErr), "type mismatch should keep the json cause")
}

func TestRepository_NestedErrorPaths(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		path    string
	}{
		{
			name:    "owner missing login",
			payload: `{"id":1,"name":"x","full_name":"o/x","owner":{"id":7},"private":false,"fork":false}`,
			path:    "owner.login",
		},
		{
			name: "parent missing full_name",
			payload: `{"id":1,"name":"x","full_name":"o/x","owner":{"login":"o","id":7},"private":false,"fork":true,
				"parent":{"id":2,"name":"x","owner":{"login":"p","id":8},"private":false,"fork":false},
				"forks_count":0,"stargazers_count":0,"watchers_count":0,"open_issues_count":0,
				"has_issues":true,"has_wiki":true,"has_pages":false,"has_downloads":true,
				"created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z","pushed_at":"2026-01-01T00:00:00Z"}`,
			path: "parent.full_name",
		},
		{
			name: "detail missing pushed_at",
			payload: `{"id":1,"name":"x","full_name":"o/x","owner":{"login":"o","id":7},"private":false,"fork":false,
				"forks_count":0,"stargazers_count":0,"watchers_count":0,"open_issues_count":0,
				"has_issues":true,"has_wiki":true,"has_pages":false,"has_downloads":true,
				"created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}`,
			path: "pushed_at",
		},
		{
			name: "bad timestamp",
			payload: `{"id":1,"name":"x","full_name":"o/x","owner":{"login":"o","id":7},"private":false,"fork":false,
				"forks_count":0,"stargazers_count":0,"watchers_count":0,"open_issues_count":0,
				"has_issues":true,"has_wiki":true,"has_pages":false,"has_downloads":true,
				"created_at":"yesterday","updated_at":"2026-01-01T00:00:00Z","pushed_at":"2026-01-01T00:00:00Z"}`,
			path: "created_at",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var repo model.Repository
			err := json.Unmarshal([]byte(tc.payload), &repo)

			var de *model.DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tc.path, de.Path)
		})
	}
}

func TestRepository_NotAnObject(t *testing.T) {
	for _, payload := range []string{`null`, `[]`, `"repo"`} {
		var repo model.Repository
		err := repo.UnmarshalJSON([]byte(payload))

		var de *model.DecodeError
		require.ErrorAs(t, err, &de, "payload %s", payload)
		assert.Empty(t, de.Path)
	}
}

func TestRepositoryKeys(t *testing.T) {
	basic, detail := model.RepositoryKeys()

	assert.Equal(t, []string{"id", "name", "full_name", "description", "owner", "private", "fork"}, basic)
	assert.Equal(t, []string{
		"homepage", "language", "default_branch", "html_url", "clone_url", "ssh_url", "parent", "size",
		"forks_count", "stargazers_count", "watchers_count", "open_issues_count",
		"has_issues", "has_wiki", "has_pages", "has_downloads",
		"created_at", "updated_at", "pushed_at",
	}, detail)
}

func TestRepository_Clone(t *testing.T) {
	repo := decodeRepo(t, forkRepoJSON)

	clone := repo.Clone()
	require.NotNil(t, clone)
	assert.Equal(t, "https://github.com/alice/Hello-World.git", clone.HTTP)
	assert.Equal(t, "git@github.com:alice/Hello-World.git", clone.SSH)

	var decoded model.Clone
	require.NoError(t, json.Unmarshal([]byte(`{"http":"https://h/r.git","ssh":"git@h:r.git"}`), &decoded))
	assert.Equal(t, model.Clone{HTTP: "https://h/r.git", SSH: "git@h:r.git"}, decoded)
}

func TestRepository_Ref(t *testing.T) {
	repo := decodeRepo(t, forkRepoJSON)

	ref := repo.Ref()
	assert.Equal(t, model.RepoRef{ID: 2000, Owner: "alice", Name: "Hello-World"}, ref)
	assert.Equal(t, "alice/Hello-World", ref.FullName())
}

func TestDetail_WithForkedFrom(t *testing.T) {
	parent := decodeRepo(t, parentRepoJSON)

	d := model.Detail{ForksCount: 1}.WithForkedFrom(&parent)
	assert.Same(t, &parent, d.ForkedFrom())
	assert.Equal(t, 1, d.ForksCount)
}

func TestParseRepoRef(t *testing.T) {
	tests := []struct {
		input   string
		want    model.RepoRef
		wantErr bool
	}{
		{input: "octocat/hello-world", want: model.RepoRef{Owner: "octocat", Name: "hello-world"}},
		{input: "octocat", wantErr: true},
		{input: "/repo", wantErr: true},
		{input: "owner/", wantErr: true},
		{input: "a/b/c", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := model.ParseRepoRef(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRepoRef_String(t *testing.T) {
	assert.Equal(t, "o/r", model.RepoRef{Owner: "o", Name: "r"}.String())
	assert.Equal(t, "#42", model.RepoRefByID(42).String())
	assert.Equal(t, "", model.RepoRefByID(42).FullName())
	assert.True(t, model.RepoRef{}.IsZero())
	assert.False(t, model.RepoRefByID(42).IsZero())
}
