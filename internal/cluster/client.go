package cluster

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/tools/remotecommand"
	utilexec "k8s.io/client-go/util/exec"
)

// probeContainerName is the single container of every probe pod.
const probeContainerName = "web"

// Client is the client-go backed Gateway implementation.
type Client struct {
	clientset  kubernetes.Interface
	restConfig *rest.Config
}

var _ Gateway = (*Client)(nil)

// NewClient creates a Gateway from a kubeconfig file, or from the
// in-cluster service account when kubeconfigPath is empty.
func NewClient(kubeconfigPath string) (*Client, error) {
	var (
		config *rest.Config
		err    error
	)
	if kubeconfigPath == "" {
		config, err = rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load in-cluster config: %w", err)
		}
	} else {
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to build kubeconfig: %w", err)
		}
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	return &Client{
		clientset:  clientset,
		restConfig: config,
	}, nil
}

// ListNodes returns the cluster's nodes in API order.
func (c *Client) ListNodes(ctx context.Context) ([]Node, error) {
	nodeList, err := c.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	nodes := make([]Node, 0, len(nodeList.Items))
	for _, n := range nodeList.Items {
		nodes = append(nodes, Node{
			Name:   n.Name,
			Labels: n.Labels,
		})
	}
	return nodes, nil
}

// CreateWorkload creates a probe pod pinned to spec.Node.
func (c *Client) CreateWorkload(ctx context.Context, namespace string, spec WorkloadSpec) error {
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      spec.Name,
			Namespace: namespace,
			Labels:    spec.Labels,
		},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{
				{
					Name:  probeContainerName,
					Image: spec.Image,
					Ports: []corev1.ContainerPort{
						{
							Name:          probeContainerName,
							ContainerPort: int32(spec.Port),
							Protocol:      corev1.ProtocolTCP,
						},
					},
				},
			},
			NodeName:      spec.Node,
			RestartPolicy: corev1.RestartPolicyAlways,
		},
	}

	if _, err := c.clientset.CoreV1().Pods(namespace).Create(ctx, pod, metav1.CreateOptions{}); err != nil {
		return fmt.Errorf("failed to create pod %s/%s: %w", namespace, spec.Name, err)
	}
	return nil
}

// DeleteWorkload deletes a probe pod. Already-gone pods are not an error.
func (c *Client) DeleteWorkload(ctx context.Context, namespace, name string) error {
	err := c.clientset.CoreV1().Pods(namespace).Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete pod %s/%s: %w", namespace, name, err)
	}
	return nil
}

// ListWorkloads returns pod names matching the label selector.
func (c *Client) ListWorkloads(ctx context.Context, namespace, selector string) ([]string, error) {
	podList, err := c.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: selector,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods: %w", err)
	}

	names := make([]string, 0, len(podList.Items))
	for _, pod := range podList.Items {
		names = append(names, pod.Name)
	}
	return names, nil
}

// WorkloadStatus reports the probe pod's lifecycle state. A pod counts as
// ready only when it is Running and reports the Ready condition; Failed
// and Succeeded phases are terminal failures for a probe that is supposed
// to serve indefinitely.
func (c *Client) WorkloadStatus(ctx context.Context, namespace, name string) (WorkloadStatus, error) {
	pod, err := c.clientset.CoreV1().Pods(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to get pod %s/%s: %w", namespace, name, err)
	}

	switch pod.Status.Phase {
	case corev1.PodPending:
		return StatusPending, nil
	case corev1.PodRunning:
		if isPodReady(pod) {
			return StatusReady, nil
		}
		return StatusPending, nil
	default:
		return StatusFailed, nil
	}
}

// CreateEndpoint creates a Service routing to the probe pod.
func (c *Client) CreateEndpoint(ctx context.Context, namespace string, spec EndpointSpec) error {
	svc := &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      spec.Name,
			Namespace: namespace,
			Labels:    spec.Selector,
		},
		Spec: corev1.ServiceSpec{
			Selector: spec.Selector,
			Ports: []corev1.ServicePort{
				{
					Name:       probeContainerName,
					Protocol:   corev1.ProtocolTCP,
					Port:       int32(spec.Port),
					TargetPort: intstr.FromInt32(int32(spec.Port)),
				},
			},
		},
	}

	if _, err := c.clientset.CoreV1().Services(namespace).Create(ctx, svc, metav1.CreateOptions{}); err != nil {
		return fmt.Errorf("failed to create service %s/%s: %w", namespace, spec.Name, err)
	}
	return nil
}

// DeleteEndpoint deletes a probe Service. Already-gone services are not an
// error.
func (c *Client) DeleteEndpoint(ctx context.Context, namespace, name string) error {
	err := c.clientset.CoreV1().Services(namespace).Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete service %s/%s: %w", namespace, name, err)
	}
	return nil
}

// ListEndpoints returns service names matching the label selector.
func (c *Client) ListEndpoints(ctx context.Context, namespace, selector string) ([]string, error) {
	svcList, err := c.clientset.CoreV1().Services(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: selector,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	names := make([]string, 0, len(svcList.Items))
	for _, svc := range svcList.Items {
		names = append(names, svc.Name)
	}
	return names, nil
}

// Exec runs command inside the probe pod over SPDY and captures stdout,
// stderr, and the exit code. A non-zero exit code is returned in the
// result; only transport-level failures surface as errors.
func (c *Client) Exec(ctx context.Context, namespace, name string, command []string) (ExecResult, error) {
	req := c.clientset.CoreV1().RESTClient().Post().
		Resource("pods").
		Namespace(namespace).
		Name(name).
		SubResource("exec").
		VersionedParams(&corev1.PodExecOptions{
			Container: probeContainerName,
			Command:   command,
			Stdout:    true,
			Stderr:    true,
		}, scheme.ParameterCodec)

	executor, err := remotecommand.NewSPDYExecutor(c.restConfig, "POST", req.URL())
	if err != nil {
		return ExecResult{}, fmt.Errorf("failed to create executor for pod %s/%s: %w", namespace, name, err)
	}

	var stdout, stderr bytes.Buffer
	err = executor.StreamWithContext(ctx, remotecommand.StreamOptions{
		Stdout: &stdout,
		Stderr: &stderr,
	})

	result := ExecResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr utilexec.CodeExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.Code
			return result, nil
		}
		return result, fmt.Errorf("exec in pod %s/%s failed: %w", namespace, name, err)
	}
	return result, nil
}

func isPodReady(pod *corev1.Pod) bool {
	for _, cond := range pod.Status.Conditions {
		if cond.Type == corev1.PodReady && cond.Status == corev1.ConditionTrue {
			return true
		}
	}
	return false
}
