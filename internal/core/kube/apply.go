package kube

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"sigs.k8s.io/yaml"
)

// ApplyManifest server-side applies every object of a multi-document YAML
// manifest. Namespaced objects without a namespace land in namespace.
func (c *Client) ApplyManifest(ctx context.Context, manifest, namespace string) error {
	objects, err := DecodeObjects(manifest)
	if err != nil {
		return err
	}

	for _, obj := range objects {
		if err := c.applyObject(ctx, obj, namespace); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) applyObject(ctx context.Context, obj *unstructured.Unstructured, namespace string) error {
	gvk := obj.GroupVersionKind()
	mapping, err := c.Mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	if err != nil {
		return fmt.Errorf("map %s: %w", gvk.String(), err)
	}

	resource := c.Dynamic.Resource(mapping.Resource)
	var applied *unstructured.Unstructured
	if mapping.Scope.Name() == meta.RESTScopeNameNamespace {
		if obj.GetNamespace() == "" {
			obj.SetNamespace(namespace)
		}
		applied, err = resource.Namespace(obj.GetNamespace()).Apply(ctx, obj.GetName(), obj,
			metav1.ApplyOptions{FieldManager: fieldManager, Force: true})
	} else {
		applied, err = resource.Apply(ctx, obj.GetName(), obj,
			metav1.ApplyOptions{FieldManager: fieldManager, Force: true})
	}
	if err != nil {
		return classify(fmt.Errorf("apply %s %s: %w", gvk.Kind, obj.GetName(), err))
	}
	c.log.V(1).Info("applied object", "kind", gvk.Kind, "name", applied.GetName(), "namespace", applied.GetNamespace())
	return nil
}

// DecodeObjects splits a multi-document YAML manifest into objects. Empty
// documents are skipped.
func DecodeObjects(manifest string) ([]*unstructured.Unstructured, error) {
	reader := utilyaml.NewYAMLReader(bufio.NewReader(strings.NewReader(manifest)))

	var objects []*unstructured.Unstructured
	for {
		doc, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read manifest document: %w", err)
		}

		data, err := yaml.YAMLToJSON(doc)
		if err != nil {
			return nil, fmt.Errorf("convert manifest document: %w", err)
		}
		if len(strings.TrimSpace(string(data))) == 0 || string(data) == "null" {
			continue
		}

		obj := &unstructured.Unstructured{}
		if err := obj.UnmarshalJSON(data); err != nil {
			return nil, fmt.Errorf("decode manifest document: %w", err)
		}
		if obj.GetKind() == "" {
			return nil, fmt.Errorf("manifest document %q has no kind", obj.GetName())
		}
		objects = append(objects, obj)
	}
	return objects, nil
}
