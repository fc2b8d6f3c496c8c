package kube

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/stackabletech/stackable/internal/core/install"
)

// Capacity sums the allocatable CPU and memory of all schedulable nodes and
// subtracts the requests of every pod still running on them.
func (c *Client) Capacity(ctx context.Context) (install.Capacity, error) {
	nodes, err := c.Clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return install.Capacity{}, classify(fmt.Errorf("list nodes: %w", err))
	}
	pods, err := c.Clientset.CoreV1().Pods(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		return install.Capacity{}, classify(fmt.Errorf("list pods: %w", err))
	}

	var allocCPU, allocMemory int64
	schedulable := map[string]bool{}
	for _, node := range nodes.Items {
		if node.Spec.Unschedulable {
			continue
		}
		schedulable[node.Name] = true
		if qty, ok := node.Status.Allocatable[corev1.ResourceCPU]; ok {
			allocCPU += qty.MilliValue()
		}
		if qty, ok := node.Status.Allocatable[corev1.ResourceMemory]; ok {
			allocMemory += qty.Value()
		}
	}

	var usedCPU, usedMemory int64
	for _, pod := range pods.Items {
		if !schedulable[pod.Spec.NodeName] {
			continue
		}
		if pod.Status.Phase == corev1.PodSucceeded || pod.Status.Phase == corev1.PodFailed {
			continue
		}
		usedCPU += sumRequests(pod.Spec.Containers, corev1.ResourceCPU, milli)
		usedMemory += sumRequests(pod.Spec.Containers, corev1.ResourceMemory, whole)
	}

	c.log.V(1).Info("cluster capacity", "nodes", len(schedulable),
		"allocatableCPUMilli", allocCPU, "requestedCPUMilli", usedCPU,
		"allocatableMemory", allocMemory, "requestedMemory", usedMemory)

	return install.Capacity{
		CPU:    *resource.NewMilliQuantity(max(allocCPU-usedCPU, 0), resource.DecimalSI),
		Memory: *resource.NewQuantity(max(allocMemory-usedMemory, 0), resource.BinarySI),
	}, nil
}

func milli(q resource.Quantity) int64 { return q.MilliValue() }
func whole(q resource.Quantity) int64 { return q.Value() }

func sumRequests(containers []corev1.Container, name corev1.ResourceName, value func(resource.Quantity) int64) int64 {
	var total int64
	for _, container := range containers {
		if qty, ok := container.Resources.Requests[name]; ok {
			total += value(qty)
		}
	}
	return total
}
