package kube

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/stackabletech/stackable/internal/core/install"
)

func (c *Client) NamespaceExists(ctx context.Context, namespace string) (bool, error) {
	_, err := c.Clientset.CoreV1().Namespaces().Get(ctx, namespace, metav1.GetOptions{})
	if err == nil {
		return true, nil
	}
	if apierrors.IsNotFound(err) {
		return false, nil
	}
	return false, classify(fmt.Errorf("get namespace %s: %w", namespace, err))
}

func (c *Client) CreateNamespace(ctx context.Context, namespace string) error {
	ns := &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: namespace}}
	_, err := c.Clientset.CoreV1().Namespaces().Create(ctx, ns, metav1.CreateOptions{})
	if err != nil && !apierrors.IsAlreadyExists(err) {
		return classify(fmt.Errorf("create namespace %s: %w", namespace, err))
	}
	return nil
}

// classify marks authorization failures with install.ErrPermissionDenied.
func classify(err error) error {
	if apierrors.IsForbidden(err) || apierrors.IsUnauthorized(err) {
		return fmt.Errorf("%w: %w", install.ErrPermissionDenied, err)
	}
	return err
}
