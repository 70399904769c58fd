package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	k8sclient "k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/pankaj-dahiya-devops/netaudit/internal/providers/aws/common"
	kube "github.com/pankaj-dahiya-devops/netaudit/internal/providers/kubernetes"
)

const weakIOS = `hostname edge-r1
enable password foo123
cdp run
line vty 0 4
 transport input telnet
!
end
`

const hardenedIOS = `hostname edge-r1
enable password foo123
no cdp run
line vty 0 4
 transport input ssh
!
end
`

// ── AWS fakes ─────────────────────────────────────────────────────────────────

type fakeSTS struct {
	account string
	err     error
}

func (f fakeSTS) GetCallerIdentity(_ context.Context, _ *sts.GetCallerIdentityInput, _ ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &sts.GetCallerIdentityOutput{Account: aws.String(f.account)}, nil
}

// fakeS3 is an in-memory bucket keyed by object key. The bucket name is
// not checked.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = string(data)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{}
	for _, k := range keys {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(k)})
	}
	return out, nil
}

// mockAWSProvider returns a fixed ProfileConfig and records the profile it
// was asked for.
type mockAWSProvider struct {
	pc          *common.ProfileConfig
	err         error
	lastProfile string
}

func (m *mockAWSProvider) LoadProfile(_ context.Context, profile, _ string) (*common.ProfileConfig, error) {
	m.lastProfile = profile
	return m.pc, m.err
}

func goodMockAWS(s3c *fakeS3) *mockAWSProvider {
	return &mockAWSProvider{pc: &common.ProfileConfig{
		ProfileName: "default",
		Region:      "us-east-1",
		Clients:     &common.ClientSet{STS: fakeSTS{account: "123456789012"}, S3: s3c},
	}}
}

// ── Kubernetes fakes ──────────────────────────────────────────────────────────

// testKubeProvider implements kube.KubeClientProvider backed by a pre-built
// fake clientset. It records the context name it was asked for.
type testKubeProvider struct {
	clientset     k8sclient.Interface
	info          kube.ClusterInfo
	calledWithCtx string
}

func (p *testKubeProvider) ClientsetForContext(contextName string) (k8sclient.Interface, kube.ClusterInfo, error) {
	p.calledWithCtx = contextName
	return p.clientset, p.info, nil
}

type failKubeProvider struct{}

func (failKubeProvider) ClientsetForContext(string) (k8sclient.Interface, kube.ClusterInfo, error) {
	return nil, kube.ClusterInfo{}, errors.New("kubeconfig not found")
}

func goodMockKube() *testKubeProvider {
	return &testKubeProvider{
		clientset: fake.NewClientset(),
		info:      kube.ClusterInfo{ContextName: "lab"},
	}
}

// ── test environment ──────────────────────────────────────────────────────────

// testEnv runs commands inside a private working and home directory so no
// real netaudit.yaml, .env or AWS files are read.
type testEnv struct {
	t    *testing.T
	dir  string
	deps deps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return &testEnv{
		t:   t,
		dir: dir,
		deps: deps{
			aws:  goodMockAWS(&fakeS3{objects: map[string]string{}}),
			kube: goodMockKube(),
			now:  func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
		},
	}
}

// write creates name under the env directory and returns its path.
func (e *testEnv) write(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		e.t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		e.t.Fatal(err)
	}
	return path
}

// run executes the root command with args and returns stdout and the error.
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmdWith(e.deps)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}
