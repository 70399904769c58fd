// Package kubernetes builds client-go clientsets for the ConfigMap source and
// the doctor API probe.
package kubernetes

import (
	"time"

	k8sclient "k8s.io/client-go/kubernetes"
)

// requestTimeout bounds every API call made through a clientset built here.
// ConfigMap listing is the only workload and it should never hang a fleet run.
const requestTimeout = 20 * time.Second

// ClusterInfo names the kubeconfig context a clientset talks to.
type ClusterInfo struct {
	ContextName string
	Server      string
}

// KubeClientProvider creates clientsets for named kubeconfig contexts.
type KubeClientProvider interface {
	// ClientsetForContext returns a clientset for contextName. An empty name
	// selects the kubeconfig's current context.
	ClientsetForContext(contextName string) (k8sclient.Interface, ClusterInfo, error)
}

// DefaultKubeClientProvider reads the kubeconfig at Path, or $KUBECONFIG,
// or ~/.kube/config, in that order.
type DefaultKubeClientProvider struct {
	Path string
}

// NewDefaultKubeClientProvider returns a provider backed by the system kubeconfig.
func NewDefaultKubeClientProvider() *DefaultKubeClientProvider {
	return &DefaultKubeClientProvider{}
}

func (p *DefaultKubeClientProvider) ClientsetForContext(contextName string) (k8sclient.Interface, ClusterInfo, error) {
	path := p.Path
	if path == "" {
		path = kubeconfigPath()
	}
	return NewClientset(path, contextName)
}
