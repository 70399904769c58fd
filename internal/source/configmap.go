package source

import (
	"context"
	"fmt"
	"sort"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	k8sclient "k8s.io/client-go/kubernetes"
)

// ConfigMapSource reads device configurations stored in Kubernetes
// ConfigMaps. Every data key of every matching ConfigMap is one device,
// named "<configmap>/<key>".
type ConfigMapSource struct {
	Client    k8sclient.Interface
	Namespace string
	// Selector is a label selector; empty selects every ConfigMap.
	Selector string
}

func (s ConfigMapSource) Documents(ctx context.Context) ([]Document, error) {
	list, err := s.Client.CoreV1().ConfigMaps(s.Namespace).List(ctx, metav1.ListOptions{LabelSelector: s.Selector})
	if err != nil {
		return nil, fmt.Errorf("list configmaps in namespace %q: %w", s.Namespace, err)
	}

	items := list.Items
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	var docs []Document
	for _, cm := range items {
		keys := make([]string, 0, len(cm.Data))
		for k := range cm.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			doc, err := NewDocument(cm.Name+"/"+k, []byte(cm.Data[k]))
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}
