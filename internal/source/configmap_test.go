package source

import (
	"context"
	"reflect"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func configMap(ns, name string, labels, data map[string]string) *corev1.ConfigMap {
	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Namespace: ns, Name: name, Labels: labels},
		Data:       data,
	}
}

func TestConfigMapSource_SelectsAndNamesKeys(t *testing.T) {
	client := fake.NewClientset(
		configMap("netops", "site-b", map[string]string{"app": "netaudit"}, map[string]string{
			"edge-r1.txt": "hostname edge-r1\n",
		}),
		configMap("netops", "site-a", map[string]string{"app": "netaudit"}, map[string]string{
			"sw2.txt": "hostname sw2\n",
			"sw1.txt": "hostname sw1\n",
		}),
		configMap("netops", "unrelated", map[string]string{"app": "other"}, map[string]string{
			"x": "hostname x\n",
		}),
		configMap("default", "elsewhere", map[string]string{"app": "netaudit"}, map[string]string{
			"y": "hostname y\n",
		}),
	)

	src := ConfigMapSource{Client: client, Namespace: "netops", Selector: "app=netaudit"}
	docs, err := src.Documents(context.Background())
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	want := []string{"site-a/sw1.txt", "site-a/sw2.txt", "site-b/edge-r1.txt"}
	if got := names(docs); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v; want %v", got, want)
	}
	if docs[0].Content != "hostname sw1\n" {
		t.Errorf("content: got %q", docs[0].Content)
	}
}

func TestConfigMapSource_EmptyNamespace(t *testing.T) {
	src := ConfigMapSource{Client: fake.NewClientset(), Namespace: "netops"}
	docs, err := src.Documents(context.Background())
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("want no documents, got %v", names(docs))
	}
}
