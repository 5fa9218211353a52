//go:build e2e

package e2e

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/imamik/srxgate/api/v1alpha1"
	"github.com/imamik/srxgate/internal/config"
	"github.com/imamik/srxgate/internal/driver"
	"github.com/imamik/srxgate/internal/testing/appliance"
	"github.com/imamik/srxgate/internal/usage"
)

const lifecycleDocs = `kind: ImplementNetwork
id: net-up
network:
  accountID: 7
  vlan: 100
  gateway: 10.0.0.1
  cidr: 10.0.0.0/24
  mode: InterfaceNAT
---
kind: SetStaticNATRules
id: nat-1
staticNAT:
  rules:
  - publicIP: 203.0.113.10
    privateIP: 10.0.0.5
    protocol: tcp
    startPort: 22
    endPort: 22
`

const shutdownDoc = `kind: ShutdownNetwork
id: net-down
network:
  accountID: 7
  vlan: 100
  gateway: 10.0.0.1
  cidr: 10.0.0.0/24
  mode: InterfaceNAT
`

var _ = Describe("Gateway lifecycle", func() {
	for _, transport := range []string{config.TransportTCP, config.TransportSSH} {
		Context("over "+transport, func() {
			var (
				srv *appliance.Server
				d   *driver.Driver
			)

			BeforeEach(func() {
				var cfg *config.Config
				srv, cfg = startAppliance(transport)

				dialer, err := driver.NewDialer(cfg)
				Expect(err).NotTo(HaveOccurred())

				poller, err := usage.NewPollerFromConfig(cfg, dialer, GinkgoLogr)
				Expect(err).NotTo(HaveOccurred())

				d, err = driver.New(cfg, driver.WithDialer(dialer), driver.WithUsage(poller), driver.WithLogger(GinkgoLogr))
				Expect(err).NotTo(HaveOccurred())
				DeferCleanup(d.Close)
			})

			It("implements a network, maps NAT and tears it down", func(ctx SpecContext) {
				cmds, err := v1alpha1.DecodeCommands([]byte(lifecycleDocs))
				Expect(err).NotTo(HaveOccurred())
				Expect(cmds).To(HaveLen(2))

				for _, cmd := range cmds {
					answer := d.Execute(ctx, cmd)
					Expect(answer.Success).To(BeTrue(), answer.Error)
					Expect(answer.ID).To(Equal(cmd.ID))
				}
				Expect(srv.Has("interfaces", "interface[ge-0/0/1]", "unit[100]")).To(BeTrue())
				Expect(srv.Has("applications", "application[tcp-22-22]")).To(BeTrue())

				down, err := v1alpha1.DecodeCommand([]byte(shutdownDoc))
				Expect(err).NotTo(HaveOccurred())
				answer := d.Execute(ctx, down)
				Expect(answer.Success).To(BeTrue(), answer.Error)
				Expect(srv.Has("interfaces", "interface[ge-0/0/1]", "unit[100]")).To(BeFalse())

				Eventually(srv.OpenCandidates).WithTimeout(2 * time.Second).Should(BeZero())
			}, SpecTimeout(30*time.Second))

			It("recovers when the appliance drops the session", func(ctx SpecContext) {
				cmds, err := v1alpha1.DecodeCommands([]byte(lifecycleDocs))
				Expect(err).NotTo(HaveOccurred())

				srv.Inject(appliance.Fault{Op: appliance.OpLoad, Count: 1, Action: appliance.FaultDrop})
				answer := d.Execute(ctx, cmds[1])

				Expect(answer.Success).To(BeTrue(), answer.Error)
				Expect(srv.RequestsFor(appliance.OpLogin)).To(HaveLen(2))
				Expect(srv.Has("applications", "application[tcp-22-22]")).To(BeTrue())
			}, SpecTimeout(30*time.Second))

			It("rolls back a rejected commit", func(ctx SpecContext) {
				cmds, err := v1alpha1.DecodeCommands([]byte(lifecycleDocs))
				Expect(err).NotTo(HaveOccurred())

				srv.Inject(appliance.Fault{Op: appliance.OpCommit, Count: -1, Action: appliance.FaultError, Message: "commit check failed"})
				answer := d.Execute(ctx, cmds[0])

				Expect(answer.Success).To(BeFalse())
				Expect(answer.Error).To(ContainSubstring("commit check failed"))
				Expect(srv.Has("interfaces", "interface[ge-0/0/1]", "unit[100]")).To(BeFalse())
				Eventually(srv.OpenCandidates).WithTimeout(2 * time.Second).Should(BeZero())
			}, SpecTimeout(30*time.Second))

			It("reports usage counters", func(ctx SpecContext) {
				srv.SetCounter("usage-input", "ip-203-0-113-10-in", 4096)
				srv.SetCounter("usage-output", "ip-203-0-113-10-out", 512)

				answer := d.Execute(ctx, v1alpha1.Command{Kind: v1alpha1.KindGetUsage, ID: "usage"})

				Expect(answer.Success).To(BeTrue(), answer.Error)
				Expect(answer.Usage).To(HaveLen(1))
				for key, totals := range answer.Usage {
					Expect(key.String()).To(Equal("203.0.113.10"))
					Expect(totals.BytesReceived).To(Equal(int64(4096)))
					Expect(totals.BytesSent).To(Equal(int64(512)))
				}
			}, SpecTimeout(30*time.Second))

			It("answers health checks", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				Expect(d.Ping(ctx)).To(Succeed())
			})
		})
	}
})
