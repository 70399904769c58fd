package kubernetes

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	k8sclient "k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"

	"github.com/pankaj-dahiya-devops/netaudit/internal/version"
)

func kubeconfigPath() string {
	if path := os.Getenv("KUBECONFIG"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".kube", "config")
}

// NewClientset builds a clientset from the kubeconfig at path for the given
// context. A context that the kubeconfig does not define is an error rather
// than a silent fallback to the current context.
func NewClientset(path, contextName string) (k8sclient.Interface, ClusterInfo, error) {
	rules := &clientcmd.ClientConfigLoadingRules{ExplicitPath: path}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: contextName}
	loader := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides)

	raw, err := loader.RawConfig()
	if err != nil {
		return nil, ClusterInfo{}, fmt.Errorf("read kubeconfig %q: %w", path, err)
	}
	info, err := clusterInfo(raw, contextName)
	if err != nil {
		return nil, ClusterInfo{}, err
	}

	rest, err := loader.ClientConfig()
	if err != nil {
		return nil, ClusterInfo{}, fmt.Errorf("kubeconfig context %q: %w", info.ContextName, err)
	}
	rest.Timeout = requestTimeout
	rest.UserAgent = "netaudit/" + version.Version

	cs, err := k8sclient.NewForConfig(rest)
	if err != nil {
		return nil, ClusterInfo{}, fmt.Errorf("kubernetes client for %q: %w", info.ContextName, err)
	}
	return cs, info, nil
}

func clusterInfo(raw clientcmdapi.Config, contextName string) (ClusterInfo, error) {
	name := contextName
	if name == "" {
		name = raw.CurrentContext
	}
	if name == "" {
		return ClusterInfo{}, errors.New("kubeconfig has no current context")
	}
	kctx, ok := raw.Contexts[name]
	if !ok {
		return ClusterInfo{}, fmt.Errorf("kubeconfig has no context %q", name)
	}
	info := ClusterInfo{ContextName: name}
	if cluster, ok := raw.Clusters[kctx.Cluster]; ok {
		info.Server = cluster.Server
	}
	return info, nil
}
